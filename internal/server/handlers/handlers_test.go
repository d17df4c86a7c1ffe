package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shrinktrack/internal/catalog"
	"github.com/mamadbah2/shrinktrack/internal/domain/models"
	"github.com/mamadbah2/shrinktrack/internal/repository/jsonfile"
	"github.com/mamadbah2/shrinktrack/internal/server/handlers"
	"github.com/mamadbah2/shrinktrack/internal/server/router"
	"github.com/mamadbah2/shrinktrack/internal/service/shrink"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	store, err := jsonfile.NewStore(t.TempDir())
	require.NoError(t, err)

	svc, err := shrink.NewService(context.Background(), store, []string{"PRODUCE", "DAIRY"}, time.UTC, nil)
	require.NoError(t, err)

	idx := catalog.New([][]string{
		{"UPC", "Brand", "Description", "Price", "SubDept"},
		{"036000291452", "Kleenex", "Facial Tissue 120ct", "3.49", "210"},
	}, [][]string{
		{"SubDept", "List"},
		{"210", "DAIRY"},
	}, nil)

	return router.New(
		handlers.NewShrinkHandler(svc, nil),
		handlers.NewCatalogHandler(idx, nil),
		"",
		nil,
	)
}

func do(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestDepartments(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodGet, "/api/departments", "")
	require.Equal(t, http.StatusOK, w.Code)

	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Equal(t, []string{"PRODUCE", "DAIRY"}, names)
}

func TestAppend_ThenQueryCaseInsensitive(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodPost, "/api/shrink/PRODUCE", `{"itemCode":"123","quantity":2,"price":1.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Record  models.ShrinkRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2.0, resp.Record.Quantity)
	require.NotNil(t, resp.Record.Price)
	assert.InDelta(t, 1.5, *resp.Record.Price, 1e-9)

	w = do(t, engine, http.MethodGet, "/api/shrink/produce", "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []models.ShrinkRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, resp.Record.ID, records[0].ID)
}

func TestAppend_MissingFields(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodPost, "/api/shrink/PRODUCE", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"validation"`)

	w = do(t, engine, http.MethodPost, "/api/shrink/PRODUCE", `{"itemCode":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"validation"`)
}

func TestInvalidListIsRejected(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodGet, "/api/shrink/FLORAL", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid-list")
}

func TestDeleteOne_SecondCall404(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodPost, "/api/shrink/DAIRY", `{"itemCode":"1","quantity":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Record models.ShrinkRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = do(t, engine, http.MethodDelete, "/api/shrink/DAIRY/"+resp.Record.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, engine, http.MethodDelete, "/api/shrink/DAIRY/"+resp.Record.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "record-not-found")
}

func TestDeleteRange_ClearsWholeList(t *testing.T) {
	engine := newTestServer(t)

	do(t, engine, http.MethodPost, "/api/shrink/PRODUCE", `{"itemCode":"1","quantity":1}`)
	do(t, engine, http.MethodPost, "/api/shrink/PRODUCE", `{"itemCode":"2","quantity":1}`)

	w := do(t, engine, http.MethodDelete, "/api/shrink/PRODUCE", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	w = do(t, engine, http.MethodGet, "/api/shrink/PRODUCE", "")
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestItemLookup(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodGet, "/api/item/036000291452", "")
	require.Equal(t, http.StatusOK, w.Code)

	var item models.CatalogItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "0003600029145", item.Code)
	assert.Equal(t, "Kleenex", item.Brand)
	assert.Equal(t, "DAIRY", item.RoutedList)

	// Miss responds with an empty object, not an error.
	w = do(t, engine, http.MethodGet, "/api/item/9999999999999", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}", strings.TrimSpace(w.Body.String()))

	// A code with no digits is rejected before lookup.
	w = do(t, engine, http.MethodGet, "/api/item/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid-code")
}

func TestExport_SingleList(t *testing.T) {
	engine := newTestServer(t)

	do(t, engine, http.MethodPost, "/api/shrink/PRODUCE", `{"itemCode":"123","quantity":2,"price":1.5}`)

	w := do(t, engine, http.MethodGet, "/api/shrink/produce/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `shrink_PRODUCE.csv`)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3) // header, one record, TOTAL
	assert.True(t, strings.HasPrefix(lines[0], `"id"`))
	assert.True(t, strings.HasSuffix(lines[2], `"3.00"`))
}

func TestExportAll(t *testing.T) {
	engine := newTestServer(t)

	do(t, engine, http.MethodPost, "/api/shrink/PRODUCE", `{"itemCode":"123","quantity":2,"price":1.5}`)
	do(t, engine, http.MethodPost, "/api/shrink/DAIRY", `{"itemCode":"456","quantity":1,"price":2}`)

	w := do(t, engine, http.MethodGet, "/api/shrink/export-all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shrink_all_lists.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4) // header, two records, TOTAL
	assert.True(t, strings.HasPrefix(lines[0], `"list"`))
	assert.Contains(t, lines[1], `"PRODUCE"`)
	assert.Contains(t, lines[2], `"DAIRY"`)
	assert.True(t, strings.HasSuffix(lines[3], `"5.00"`))
}

func TestQuery_BadDateRange(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodGet, "/api/shrink/PRODUCE?from=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"validation"`)
}

func TestHealthz(t *testing.T) {
	engine := newTestServer(t)

	w := do(t, engine, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
