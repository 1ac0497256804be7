package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/server/middleware"
	"github.com/mamadbah2/stocktake/internal/service/access"
	"github.com/mamadbah2/stocktake/internal/service/query"
)

// InventoryService is the inventory store as the HTTP layer sees it.
type InventoryService interface {
	Items() []models.Item
	Item(id int64) (models.Item, error)
	Categories() []models.Category
	AddItem(sess models.Session, draft models.ItemDraft) (models.Item, error)
	UpdateItem(sess models.Session, id int64, patch models.ItemPatch) (models.Item, error)
	DeleteItem(sess models.Session, id int64, decision models.Decision) error
	TogglePin(sess models.Session, id int64) (models.Item, error)
	ImportItems(sess models.Session, data []byte, decision models.Decision) (int, error)
	ExportItemsJSON() ([]byte, error)
	AddCategory(sess models.Session, cat models.Category) (models.Category, error)
	UpdateCategory(sess models.Session, value string, patch models.CategoryPatch) (models.Category, error)
	DeleteCategory(sess models.Session, value string, decision models.Decision) (int, error)
}

// InventoryHandler exposes item and category CRUD.
type InventoryHandler struct {
	svc    InventoryService
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc InventoryService, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger}
}

// ListItems returns all items, optionally filtered by ?category= and ?search=
// and ordered by ?sort=name|quantity|expiry&order=asc|desc.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	field, ok := query.ParseSortField(c.Query("sort"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be name, quantity or expiry"})
		return
	}
	ascending := !strings.EqualFold(c.Query("order"), "desc")

	items := query.ByCategory(h.svc.Items(), c.DefaultQuery("category", query.AllCategories))
	items = query.BySearch(items, c.Query("search"))
	c.JSON(http.StatusOK, gin.H{"items": query.SortBy(items, field, ascending)})
}

// GetItem returns one item.
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Item(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateItem adds an item.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var draft models.ItemDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	item, err := h.svc.AddItem(middleware.SessionFrom(c), draft)
	respondMutation(c, h.logger, http.StatusCreated, gin.H{"item": item}, err)
}

// UpdateItem applies a partial update.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch models.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	item, err := h.svc.UpdateItem(middleware.SessionFrom(c), id, patch)
	respondMutation(c, h.logger, http.StatusOK, gin.H{"item": item}, err)
}

// DeleteItem removes an item once confirmed.
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := h.svc.DeleteItem(middleware.SessionFrom(c), id, decisionFrom(c))
	respondMutation(c, h.logger, http.StatusOK, gin.H{"deleted": id}, err)
}

// TogglePin flips the pinned flag.
func (h *InventoryHandler) TogglePin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.TogglePin(middleware.SessionFrom(c), id)
	respondMutation(c, h.logger, http.StatusOK, gin.H{"item": item}, err)
}

// ExportItems downloads the collection as JSON.
func (h *InventoryHandler) ExportItems(c *gin.Context) {
	if err := access.Authorize(middleware.SessionFrom(c).Role, access.ActionExport); err != nil {
		respondError(c, h.logger, err)
		return
	}
	data, err := h.svc.ExportItemsJSON()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="stock-export.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportItems replaces the collection with the JSON array in the body.
func (h *InventoryHandler) ImportItems(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}
	count, err := h.svc.ImportItems(middleware.SessionFrom(c), data, decisionFrom(c))
	respondMutation(c, h.logger, http.StatusOK, gin.H{"imported": count}, err)
}

// ListCategories returns the categories in display order.
func (h *InventoryHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.svc.Categories()})
}

// CreateCategory adds a category.
func (h *InventoryHandler) CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.svc.AddCategory(middleware.SessionFrom(c), cat)
	respondMutation(c, h.logger, http.StatusCreated, gin.H{"category": created}, err)
}

// UpdateCategory changes a category's label or emoji.
func (h *InventoryHandler) UpdateCategory(c *gin.Context) {
	var patch models.CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cat, err := h.svc.UpdateCategory(middleware.SessionFrom(c), categoryParam(c), patch)
	respondMutation(c, h.logger, http.StatusOK, gin.H{"category": cat}, err)
}

// DeleteCategory removes a category once confirmed.
func (h *InventoryHandler) DeleteCategory(c *gin.Context) {
	value := categoryParam(c)
	moved, err := h.svc.DeleteCategory(middleware.SessionFrom(c), value, decisionFrom(c))
	respondMutation(c, h.logger, http.StatusOK, gin.H{"deleted": value, "reassigned": moved}, err)
}

// categoryParam reads the catch-all segment; values such as "def/prep" contain slashes.
func categoryParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("value"), "/")
}
