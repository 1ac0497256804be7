package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/metrics"
	"github.com/mamadbah2/stocktake/internal/repository/localstore"
	"github.com/mamadbah2/stocktake/internal/repository/mongodb"
	"github.com/mamadbah2/stocktake/internal/repository/sheets"
	"github.com/mamadbah2/stocktake/internal/scheduler"
	"github.com/mamadbah2/stocktake/internal/server/handlers"
	"github.com/mamadbah2/stocktake/internal/server/middleware"
	"github.com/mamadbah2/stocktake/internal/server/router"
	"github.com/mamadbah2/stocktake/internal/service/audit"
	"github.com/mamadbah2/stocktake/internal/service/auth"
	commandsvc "github.com/mamadbah2/stocktake/internal/service/commands"
	"github.com/mamadbah2/stocktake/internal/service/inventory"
	"github.com/mamadbah2/stocktake/internal/service/realtime"
	reportingsvc "github.com/mamadbah2/stocktake/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/stocktake/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/stocktake/pkg/clients/whatsapp"
	"github.com/mamadbah2/stocktake/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	files, err := localstore.NewFileStore(cfg.Storage.DataDir, baseLogger.Named("repo.local"))
	if err != nil {
		baseLogger.Fatal("failed to init local store", zap.Error(err))
	}

	seed, err := config.LoadCategories(cfg.Inventory.CategoriesFile)
	if err != nil {
		baseLogger.Fatal("failed to load categories file", zap.Error(err))
	}

	history := audit.NewLog(files, cfg.Inventory.HistoryCapacity, baseLogger.Named("svc.audit"))
	store, err := inventory.NewStore(files, history, inventory.Options{
		DefaultCategory: cfg.Inventory.DefaultCategory,
		SeedCategories:  seed,
	}, baseLogger.Named("svc.inventory"))
	if err != nil {
		baseLogger.Fatal("failed to load inventory", zap.Error(err))
	}

	collector := metrics.NewCollector()
	collector.Observe(store.Items())
	store.Subscribe(collector)

	hub := realtime.NewHub(baseLogger.Named("svc.realtime"))
	store.Subscribe(hub)

	var (
		directory auth.RoleDirectory = auth.NewStaticDirectory(cfg.Auth.OwnerUserIDs)
		reports   reportingsvc.ReportRepository
	)
	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		directory = mongoRepo
		reports = mongoRepo
		baseLogger.Info("mongodb enabled", zap.String("db", cfg.MongoDB.DBName))
	} else {
		baseLogger.Warn("mongodb not configured, roles come from OWNER_USER_IDS and digests are not archived")
	}

	authSvc, err := auth.NewService(cfg.Auth.JWTSecret, directory, baseLogger.Named("svc.auth"))
	if err != nil {
		baseLogger.Fatal("failed to init auth", zap.Error(err))
	}

	var sheetRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		sheetRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	}

	reportingSvc := reportingsvc.NewService(store, history, reportingsvc.Options{
		Reports:  reports,
		Sheet:    sheetRepo,
		Currency: cfg.Inventory.Currency,
		Location: loc,
	}, baseLogger.Named("svc.reporting"))

	h := router.Handlers{
		Auth:      middleware.Auth(authSvc, baseLogger.Named("middleware.auth")),
		Inventory: handlers.NewInventoryHandler(store, baseLogger.Named("handlers.inventory")),
		Views:     handlers.NewViewHandler(store, history, cfg.Inventory.Currency, loc, baseLogger.Named("handlers.views")),
		Realtime:  handlers.NewRealtimeHandler(hub, nil, baseLogger.Named("handlers.realtime")),
		Metrics:   collector.Handler(),
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(store, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		if cfg.WhatsApp.DigestRecipient != "" {
			notifier = messagingSvc
		}
		baseLogger.Info("whatsapp enabled", zap.Int("owners", len(cfg.WhatsApp.OwnerNumbers)))
	}

	engine := router.New(h, cfg.Server.GinMode, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting.CronSchedule, loc, reportingSvc, notifier, cfg.WhatsApp.DigestRecipient, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Int("items", len(store.Items())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
