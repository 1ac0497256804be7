package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository/localstore"
	"github.com/mamadbah2/stocktake/internal/repository/sheets"
	"github.com/mamadbah2/stocktake/internal/service/audit"
	"github.com/mamadbah2/stocktake/internal/service/inventory"
	"github.com/mamadbah2/stocktake/internal/service/reporting"
	"github.com/mamadbah2/stocktake/pkg/logger"
)

var (
	envFile  = flag.String("env", "", "path to a .env file (defaults to ./.env when present)")
	logLevel = flag.String("log-level", "warn", "log level for diagnostics on stderr")
)

// operator is the session the CLI acts as. Access to the data directory
// already implies ownership.
var operator = models.OwnerSession("stockctl")

// app holds the services a command works with.
type app struct {
	cfg       *config.Config
	loc       *time.Location
	history   *audit.Log
	store     *inventory.Store
	reporting *reporting.Service
	logger    *zap.Logger
}

// openApp loads the configuration and the records under DATA_DIR.
func openApp(ctx context.Context, withSheets bool) (*app, error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(*logLevel)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Reporting.Timezone, err)
	}

	files, err := localstore.NewFileStore(cfg.Storage.DataDir, log.Named("repo.local"))
	if err != nil {
		return nil, err
	}

	seed, err := config.LoadCategories(cfg.Inventory.CategoriesFile)
	if err != nil {
		return nil, err
	}

	history := audit.NewLog(files, cfg.Inventory.HistoryCapacity, log.Named("svc.audit"))
	store, err := inventory.NewStore(files, history, inventory.Options{
		DefaultCategory: cfg.Inventory.DefaultCategory,
		SeedCategories:  seed,
	}, log.Named("svc.inventory"))
	if err != nil {
		return nil, err
	}

	opts := reporting.Options{Currency: cfg.Inventory.Currency, Location: loc}
	if withSheets && cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, log.Named("repo.sheets"))
		if err != nil {
			return nil, err
		}
		opts.Sheet = repo
	}

	return &app{
		cfg:       cfg,
		loc:       loc,
		history:   history,
		store:     store,
		reporting: reporting.NewService(store, history, opts, log.Named("svc.reporting")),
		logger:    log,
	}, nil
}

// promptConfirmer asks on out and reads a yes/no answer from in. Anything
// but y or yes declines.
func promptConfirmer(in io.Reader, out io.Writer) models.ConfirmFunc {
	return func(message string) models.Decision {
		fmt.Fprintf(out, "%s [y/N] ", message)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return models.DecisionDeclined
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return models.DecisionConfirmed
		default:
			return models.DecisionDeclined
		}
	}
}
