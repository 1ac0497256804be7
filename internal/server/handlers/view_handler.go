package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/server/middleware"
	"github.com/mamadbah2/stocktake/internal/service/access"
	"github.com/mamadbah2/stocktake/internal/service/query"
	"github.com/mamadbah2/stocktake/internal/service/reporting"
)

// InventoryReader is the read side of the inventory store.
type InventoryReader interface {
	Items() []models.Item
	Categories() []models.Category
}

// HistorySource is the audit history as the HTTP layer sees it.
type HistorySource interface {
	List() []models.LogEntry
	WriteCSV(w io.Writer, loc *time.Location) error
}

// ViewHandler serves the read-only pages: dashboard, stock, shopping, expiry,
// pinned and history.
type ViewHandler struct {
	inventory InventoryReader
	history   HistorySource
	currency  string
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewViewHandler constructs the view handler. Dates are bucketed in loc.
func NewViewHandler(inventory InventoryReader, history HistorySource, currency string, loc *time.Location, logger *zap.Logger) *ViewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ViewHandler{
		inventory: inventory,
		history:   history,
		currency:  currency,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

func (h *ViewHandler) clock() time.Time { return h.now().In(h.loc) }

// authorize writes 403 and reports false when the session may not see action.
func (h *ViewHandler) authorize(c *gin.Context, action access.Action) bool {
	if err := access.Authorize(middleware.SessionFrom(c).Role, action); err != nil {
		respondError(c, h.logger, err)
		return false
	}
	return true
}

// Me describes the caller and what the client should render for them.
func (h *ViewHandler) Me(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"session": sess,
		"actions": access.Actions(sess.Role),
		"fields":  access.AllowedFields(sess.Role).List(),
	})
}

// Dashboard returns the headline numbers and the per-category breakdown.
func (h *ViewHandler) Dashboard(c *gin.Context) {
	if !h.authorize(c, access.ActionViewDashboard) {
		return
	}
	items := h.inventory.Items()
	summary := query.Summarize(items, h.clock())
	breakdown := query.CategoryBreakdown(items, h.inventory.Categories())

	categories := make([]gin.H, 0, len(breakdown))
	for _, b := range breakdown {
		categories = append(categories, gin.H{
			"category":    b.Category,
			"count":       b.Count,
			"cost":        b.Cost,
			"costDisplay": reporting.FormatMoney(b.Cost, h.currency),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":          summary,
		"totalCostDisplay": reporting.FormatMoney(summary.TotalCost, h.currency),
		"categories":       categories,
	})
}

// Stock is the stock listing without prep items.
func (h *ViewHandler) Stock(c *gin.Context) {
	if !h.authorize(c, access.ActionViewStock) {
		return
	}
	field, ok := query.ParseSortField(c.Query("sort"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be name, quantity or expiry"})
		return
	}
	items := h.inventory.Items()
	view := query.Stock(items, c.DefaultQuery("category", query.AllCategories), c.Query("search"), field, !strings.EqualFold(c.Query("order"), "desc"))
	c.JSON(http.StatusOK, gin.H{
		"items":            view.Items,
		"counts":           view.Counts,
		"totalCost":        view.TotalCost,
		"totalCostDisplay": reporting.FormatMoney(view.TotalCost, h.currency),
		"expiringSoon":     len(query.ExpiringWithin(items, h.clock(), query.ExpiringSoonDays)),
	})
}

// Shopping lists the items to reorder with their total value.
func (h *ViewHandler) Shopping(c *gin.Context) {
	if !h.authorize(c, access.ActionViewShopping) {
		return
	}
	items := query.SortBy(query.ShoppingList(h.inventory.Items()), query.SortByName, true)
	total := query.TotalCost(items)
	c.JSON(http.StatusOK, gin.H{
		"items":            items,
		"totalCost":        total,
		"totalCostDisplay": reporting.FormatMoney(total, h.currency),
	})
}

// Expiry groups items into today, tomorrow and later, each with the value of
// its items. ?bucket= narrows the response to one group.
func (h *ViewHandler) Expiry(c *gin.Context) {
	if !h.authorize(c, access.ActionViewExpiry) {
		return
	}
	items := h.inventory.Items()
	now := h.clock()

	buckets := []models.ExpiryBucket{models.ExpiryToday, models.ExpiryTomorrow, models.ExpiryLater}
	if raw := c.Query("bucket"); raw != "" {
		bucket, ok := models.ParseExpiryBucket(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bucket must be today, tomorrow or later"})
			return
		}
		buckets = []models.ExpiryBucket{bucket}
	}

	body := make(gin.H, len(buckets))
	for _, bucket := range buckets {
		view := query.Expiry(items, bucket, now)
		body[string(bucket)] = gin.H{
			"items":            view.Items,
			"totalCost":        view.TotalCost,
			"totalCostDisplay": reporting.FormatMoney(view.TotalCost, h.currency),
		}
	}
	c.JSON(http.StatusOK, body)
}

// Pinned lists pinned items.
func (h *ViewHandler) Pinned(c *gin.Context) {
	if !h.authorize(c, access.ActionViewPinned) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": query.SortBy(query.Pinned(h.inventory.Items()), query.SortByName, true)})
}

// History returns the retained audit entries, most recent first.
func (h *ViewHandler) History(c *gin.Context) {
	if !h.authorize(c, access.ActionViewHistory) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": h.history.List()})
}

// HistoryCSV downloads the audit history as CSV.
func (h *ViewHandler) HistoryCSV(c *gin.Context) {
	if !h.authorize(c, access.ActionViewHistory) {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="stock-history.csv"`)
	c.Status(http.StatusOK)
	if err := h.history.WriteCSV(c.Writer, h.loc); err != nil {
		h.logger.Error("write history csv", zap.Error(err))
	}
}
