package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/metrics"
	"github.com/mamadbah2/stocktake/internal/repository/localstore"
	"github.com/mamadbah2/stocktake/internal/server/handlers"
	"github.com/mamadbah2/stocktake/internal/server/middleware"
	"github.com/mamadbah2/stocktake/internal/service/audit"
	"github.com/mamadbah2/stocktake/internal/service/inventory"
)

type tokens map[string]models.Session

func (t tokens) Authenticate(_ context.Context, token string) (models.Session, error) {
	if s, ok := t[token]; ok {
		return s, nil
	}
	return models.Session{}, errors.New("unknown token")
}

type testServer struct {
	engine *gin.Engine
	store  *inventory.Store
	repo   *localstore.Memory
	log    *audit.Log
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := localstore.NewMemory()
	log := audit.NewLog(repo, 0, nil)
	store, err := inventory.NewStore(repo, log, inventory.Options{}, nil)
	require.NoError(t, err)

	collector := metrics.NewCollector()
	store.Subscribe(collector)

	auth := tokens{
		"owner": models.OwnerSession("owner-1"),
		"guest": {UserID: "guest-1", Role: models.RoleGuest},
	}
	engine := New(Handlers{
		Auth:      middleware.Auth(auth, nil),
		Inventory: handlers.NewInventoryHandler(store, nil),
		Views:     handlers.NewViewHandler(store, log, "GBP", time.UTC, nil),
		Metrics:   collector.Handler(),
	}, gin.TestMode, nil)

	return &testServer{engine: engine, store: store, repo: repo, log: log}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const milkJSON = `{"name":"Milk","quantity":2,"image":"/img/milk.png","expiry":"2030-01-01","threshold":5,"caseCost":10,"caseSize":4,"category":"fresh","unitType":"portion"}`

func (s *testServer) addMilk(t *testing.T) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/items", "owner", milkJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode(t, rec)["item"].(map[string]any)
	return int64(item["id"].(float64))
}

func TestHealthzAndAuth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/items", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/items", "nope", "").Code)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)

	body := decode(t, s.do(t, http.MethodGet, "/api/me", "guest", ""))
	assert.Equal(t, []any{"quantity", "expiry"}, body["fields"])
	assert.NotContains(t, body["actions"], "item.delete")
}

func TestItemLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.addMilk(t)
	path := "/api/items/" + strconv.FormatInt(id, 10)

	item := decode(t, s.do(t, http.MethodGet, path, "guest", ""))["item"].(map[string]any)
	assert.Equal(t, "Low", item["level"])

	rec := s.do(t, http.MethodPatch, path, "guest", `{"name":"x","quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	item = decode(t, rec)["item"].(map[string]any)
	assert.Equal(t, "Milk", item["name"])
	assert.Equal(t, "OOS", item["level"])

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, path+"?confirm=true", "guest", "").Code)
	assert.Equal(t, http.StatusPreconditionRequired, s.do(t, http.MethodDelete, path, "owner", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, path+"?confirm=true", "owner", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, "owner", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path+"?confirm=true", "owner", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/items/abc", "owner", "").Code)

	entries := decode(t, s.do(t, http.MethodGet, "/api/history", "guest", ""))["entries"].([]any)
	require.Len(t, entries, 3)
	assert.Equal(t, "deleted", entries[0].(map[string]any)["action"])
}

func TestCreateValidationAndWarning(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/items", "owner", `{"name":"","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/items", "guest", milkJSON).Code)

	s.repo.FailSaves(localstore.KeyItems, errors.New("disk full"))
	rec = s.do(t, http.MethodPost, "/api/items", "owner", milkJSON)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, decode(t, rec)["warning"], "disk full")
}

func TestPinAndViews(t *testing.T) {
	s := newTestServer(t)
	id := s.addMilk(t)

	rec := s.do(t, http.MethodPost, "/api/items/"+strconv.FormatInt(id, 10)+"/pin", "guest", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/views/pinned", "guest", "").Code)
	pinned := decode(t, s.do(t, http.MethodGet, "/api/views/pinned", "owner", ""))["items"].([]any)
	assert.Len(t, pinned, 1)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/views/shopping", "guest", "").Code)
	shopping := decode(t, s.do(t, http.MethodGet, "/api/views/shopping", "owner", ""))
	assert.Len(t, shopping["items"], 1)
	assert.Equal(t, "£5.00", shopping["totalCostDisplay"])

	dash := decode(t, s.do(t, http.MethodGet, "/api/views/dashboard", "guest", ""))
	assert.Equal(t, "£5.00", dash["totalCostDisplay"])
	assert.Equal(t, float64(1), dash["summary"].(map[string]any)["totalItems"])

	stock := decode(t, s.do(t, http.MethodGet, "/api/views/stock?sort=quantity&order=desc", "guest", ""))
	assert.Len(t, stock["items"], 1)
	assert.Equal(t, "£5.00", stock["totalCostDisplay"])
	stock = decode(t, s.do(t, http.MethodGet, "/api/views/stock?category=dry", "guest", ""))
	assert.Empty(t, stock["items"])
	assert.Equal(t, "£0.00", stock["totalCostDisplay"])
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/views/stock?sort=price", "guest", "").Code)

	expiry := decode(t, s.do(t, http.MethodGet, "/api/views/expiry", "guest", ""))
	later := expiry["later"].(map[string]any)
	assert.Len(t, later["items"], 1)
	assert.Equal(t, "£5.00", later["totalCostDisplay"])
	today := expiry["today"].(map[string]any)
	assert.Empty(t, today["items"])
	assert.Equal(t, "£0.00", today["totalCostDisplay"])

	expiry = decode(t, s.do(t, http.MethodGet, "/api/views/expiry?bucket=tomorrow", "guest", ""))
	assert.Len(t, expiry, 1)
	assert.Contains(t, expiry, "tomorrow")
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/views/expiry?bucket=soon", "guest", "").Code)
}

func TestCategoryRoutesHandleSlashes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPatch, "/api/categories/def/prep", "owner", `{"label":"Defrosting"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Defrosting", decode(t, rec)["category"].(map[string]any)["label"])

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/categories/def/prep?confirm=true", "guest", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/categories/dry?confirm=true", "owner", "").Code)

	rec = s.do(t, http.MethodDelete, "/api/categories/def/prep?confirm=true", "owner", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "def/prep", decode(t, rec)["deleted"])

	rec = s.do(t, http.MethodPost, "/api/categories", "owner", `{"label":"Spices","value":"spices","emoji":"🌶"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	cats := decode(t, s.do(t, http.MethodGet, "/api/categories", "guest", ""))["categories"].([]any)
	assert.Len(t, cats, 5)
}

func TestImportExport(t *testing.T) {
	s := newTestServer(t)
	s.addMilk(t)
	before := s.store.Items()

	rec := s.do(t, http.MethodGet, "/api/items/export", "guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.String()

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/items/import?confirm=true", "guest", exported).Code)
	assert.Equal(t, http.StatusPreconditionRequired, s.do(t, http.MethodPost, "/api/items/import", "owner", exported).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/items/import?confirm=true", "owner", `{"id":1}`).Code)

	rec = s.do(t, http.MethodPost, "/api/items/import?confirm=true", "owner", exported)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["imported"])
	assert.Equal(t, before, s.store.Items())
}

func TestHistoryCSVAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.addMilk(t)

	rec := s.do(t, http.MethodGet, "/api/history/export", "guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Time,Item,Action", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",Milk,added"))

	rec = s.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stock_items 1")
	assert.Contains(t, rec.Body.String(), `stock_mutations_total{kind="item.added",role="owner"} 1`)
}
