package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/hexarch/items-api/internal/model"
	"github.com/hexarch/items-api/internal/service"
	"github.com/hexarch/items-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory ItemRepository so the handler tests run the full
// handler -> service -> repository path without a database.
type memRepo struct {
	items  map[uint64]model.Item
	nextID uint64
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[uint64]model.Item), nextID: 1}
}

func (m *memRepo) FindByID(_ context.Context, id uint64) (*model.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *memRepo) List(context.Context, map[string]any) ([]model.Item, error) {
	return m.sorted(func(model.Item) bool { return true }), nil
}

func (m *memRepo) Create(_ context.Context, item *model.Item) (*model.Item, error) {
	now := time.Now()
	stored := *item
	stored.ID = m.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.items[stored.ID] = stored
	m.nextID++
	return &stored, nil
}

func (m *memRepo) Update(_ context.Context, id uint64, patch model.ItemPatch) (*model.Item, error) {
	stored, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		stored.Name = *patch.Name
	}
	if patch.Description != nil {
		stored.Description = patch.Description
	}
	if patch.Price != nil {
		stored.Price = *patch.Price
	}
	if patch.IsActive != nil {
		stored.IsActive = *patch.IsActive
	}
	stored.UpdatedAt = time.Now()
	m.items[id] = stored
	return &stored, nil
}

func (m *memRepo) Delete(_ context.Context, id uint64) (bool, error) {
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *memRepo) FindByName(_ context.Context, name string) ([]model.Item, error) {
	needle := strings.ToLower(name)
	return m.sorted(func(item model.Item) bool {
		return strings.Contains(strings.ToLower(item.Name), needle)
	}), nil
}

func (m *memRepo) FindActive(context.Context) ([]model.Item, error) {
	return m.sorted(func(item model.Item) bool { return item.IsActive }), nil
}

func (m *memRepo) sorted(keep func(model.Item) bool) []model.Item {
	out := make([]model.Item, 0, len(m.items))
	for _, item := range m.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func newTestServer() *echo.Echo {
	repo := newMemRepo()
	h := NewItemHandler(service.NewItemService(repo))

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())

	items := e.Group("/api/items")
	items.GET("", h.List)
	items.POST("", h.Create)
	items.GET("/search", h.Search)
	items.GET("/:id", h.Get)
	items.PATCH("/:id", h.Update)
	items.DELETE("/:id", h.Delete)
	items.POST("/:id/discount", h.Discount)

	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeItem(t *testing.T, rec *httptest.ResponseRecorder) ItemResponse {
	t.Helper()
	var resp ItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) ItemListResponse {
	t.Helper()
	var resp ItemListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateThenDiscountThenGet(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/items/", `{"name":"Widget","price":10.0}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeItem(t, rec)
	require.True(t, created.IsActive, "is_active must default to true")
	require.Equal(t, 10.0, created.Price)
	require.NotZero(t, created.ID)
	require.NotEmpty(t, created.CreatedAt)
	require.NotEmpty(t, created.UpdatedAt)

	rec = doJSON(e, http.MethodPost, "/api/items/1/discount?discount_percent=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 8.0, decodeItem(t, rec).Price)

	// The discount must be durable, not a transient computation.
	rec = doJSON(e, http.MethodGet, "/api/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 8.0, decodeItem(t, rec).Price)
}

func TestCreateValidation(t *testing.T) {
	e := newTestServer()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"price":10.0}`},
		{"zero price", `{"name":"Widget","price":0}`},
		{"negative price", `{"name":"Widget","price":-3}`},
		{"missing price", `{"name":"Widget"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/items/", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Contains(t, body, "detail")
		})
	}
}

func TestGetMissing(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodGet, "/api/items/999999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"detail":"Item with ID 999999 not found"}`, rec.Body.String())
}

func TestGetInvalidID(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodGet, "/api/items/abc", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPartialUpdate(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/items/", `{"name":"Widget","description":"blue","price":10.0,"is_active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPatch, "/api/items/1", `{"price":5.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeItem(t, rec)
	require.Equal(t, 5.5, updated.Price)
	require.Equal(t, "Widget", updated.Name)
	require.NotNil(t, updated.Description)
	require.Equal(t, "blue", *updated.Description)
	require.True(t, updated.IsActive)

	t.Run("missing item", func(t *testing.T) {
		rec := doJSON(e, http.MethodPatch, "/api/items/404", `{"price":5.5}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-positive price", func(t *testing.T) {
		rec := doJSON(e, http.MethodPatch, "/api/items/1", `{"price":-1}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestDeleteThenGet(t *testing.T) {
	e := newTestServer()

	rec := doJSON(e, http.MethodPost, "/api/items/", `{"name":"Widget","price":10.0}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/items/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/api/items/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/items/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListActiveFilter(t *testing.T) {
	e := newTestServer()

	doJSON(e, http.MethodPost, "/api/items/", `{"name":"Active","price":1.0}`)
	doJSON(e, http.MethodPost, "/api/items/", `{"name":"Inactive","price":2.0,"is_active":false}`)

	rec := doJSON(e, http.MethodGet, "/api/items/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, decodeList(t, rec).Count)

	rec = doJSON(e, http.MethodGet, "/api/items/?active=true", "")
	list := decodeList(t, rec)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Active", list.Items[0].Name)

	rec = doJSON(e, http.MethodGet, "/api/items/?active=false", "")
	list = decodeList(t, rec)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Inactive", list.Items[0].Name)

	rec = doJSON(e, http.MethodGet, "/api/items/?active=banana", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSearch(t *testing.T) {
	e := newTestServer()

	doJSON(e, http.MethodPost, "/api/items/", `{"name":"Blue Widget","price":1.0}`)
	doJSON(e, http.MethodPost, "/api/items/", `{"name":"Red Gadget","price":2.0}`)

	rec := doJSON(e, http.MethodGet, "/api/items/search/?name=widget", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeList(t, rec)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "Blue Widget", list.Items[0].Name)

	rec = doJSON(e, http.MethodGet, "/api/items/search/?name=nothing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, decodeList(t, rec).Count)

	// An empty search string is a valid query and matches every row.
	rec = doJSON(e, http.MethodGet, "/api/items/search/?name=", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, decodeList(t, rec).Count)

	rec = doJSON(e, http.MethodGet, "/api/items/search/", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDiscountBoundaries(t *testing.T) {
	e := newTestServer()

	doJSON(e, http.MethodPost, "/api/items/", `{"name":"Widget","price":10.0}`)

	// Zero is rejected at the HTTP boundary even though the entity rule
	// accepts it.
	rec := doJSON(e, http.MethodPost, "/api/items/1/discount?discount_percent=0", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/items/1/discount?discount_percent=101", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/items/1/discount", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/items/1/discount?discount_percent=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0.0, decodeItem(t, rec).Price)

	rec = doJSON(e, http.MethodPost, "/api/items/999999/discount?discount_percent=20", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
