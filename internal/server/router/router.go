package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/server/handlers"
)

// Handlers groups everything the engine routes to. Webhook and Metrics are
// optional.
type Handlers struct {
	Auth      gin.HandlerFunc
	Inventory *handlers.InventoryHandler
	Views     *handlers.ViewHandler
	Realtime  *handlers.RealtimeHandler
	Webhook   *handlers.WebhookHandler
	Metrics   http.Handler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, mode string, logger *zap.Logger) *gin.Engine {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	api := r.Group("/api", h.Auth)
	api.GET("/me", h.Views.Me)

	api.GET("/items", h.Inventory.ListItems)
	api.POST("/items", h.Inventory.CreateItem)
	api.GET("/items/export", h.Inventory.ExportItems)
	api.POST("/items/import", h.Inventory.ImportItems)
	api.GET("/items/:id", h.Inventory.GetItem)
	api.PATCH("/items/:id", h.Inventory.UpdateItem)
	api.DELETE("/items/:id", h.Inventory.DeleteItem)
	api.POST("/items/:id/pin", h.Inventory.TogglePin)

	api.GET("/categories", h.Inventory.ListCategories)
	api.POST("/categories", h.Inventory.CreateCategory)
	api.PATCH("/categories/*value", h.Inventory.UpdateCategory)
	api.DELETE("/categories/*value", h.Inventory.DeleteCategory)

	views := api.Group("/views")
	views.GET("/dashboard", h.Views.Dashboard)
	views.GET("/stock", h.Views.Stock)
	views.GET("/shopping", h.Views.Shopping)
	views.GET("/expiry", h.Views.Expiry)
	views.GET("/pinned", h.Views.Pinned)

	api.GET("/history", h.Views.History)
	api.GET("/history/export", h.Views.HistoryCSV)

	if h.Realtime != nil {
		api.GET("/ws", h.Realtime.Stream)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
