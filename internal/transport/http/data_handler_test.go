package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pontoscli/internal/config"
	"pontoscli/internal/services"
)

type stubStore struct {
	files map[string][]byte
}

func (s *stubStore) Exists(_ context.Context, path string) (bool, error) {
	_, ok := s.files[path]
	return ok, nil
}

func (s *stubStore) ReadBytes(_ context.Context, path string) ([]byte, error) {
	return s.files[path], nil
}

func stubWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	store := &stubStore{files: map[string][]byte{
		"Abril 2024/Ana Abril.xlsx": stubWorkbook(t, [][]interface{}{
			{"Data", "Pontos"},
			{"20/04/2024", "10"},
		}),
	}}
	catalog := config.Catalog{
		{Name: "Abril 2024", Files: []string{"Ana Abril.xlsx"}},
	}
	svc := services.NewDataService(config.Default(), services.Dependencies{
		Store:   store,
		Catalog: catalog,
	}, slog.Default())

	r := chi.NewRouter()
	r.Mount("/api/data", NewDataHandler(svc, slog.Default()).Routes())
	r.Mount("/api/health", NewHealthHandler(svc).Routes())
	return r
}

func doJSON(t *testing.T, router chi.Router, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestDataHandler_GetWeeklySeries(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/data/weekly")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	series, ok := body["series"].([]interface{})
	require.True(t, ok)
	assert.Len(t, series, 5)
}

func TestDataHandler_GetSummary(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/data/summary")

	assert.Equal(t, http.StatusOK, rec.Code)
	summary, ok := body["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 10.0, summary["total_points"])
	assert.Equal(t, "Ana", summary["best_performer"])
}

func TestDataHandler_GetRecords_WeekValidation(t *testing.T) {
	router := newTestRouter(t)

	for _, week := range []string{"0", "6", "abc", "-1"} {
		rec, body := doJSON(t, router, http.MethodGet, "/api/data/records?week="+week)

		assert.Equal(t, http.StatusBadRequest, rec.Code, week)
		assert.Equal(t, false, body["success"])
	}
}

func TestDataHandler_GetRecords_Filtered(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/data/records?entity=Ana&week=4")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["count"])
}

func TestDataHandler_Refresh(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/data/refresh")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	stats, ok := body["statistics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 10.0, stats["total_points"])
}

func TestDataHandler_Export(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/export?format=csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Nome,Pontos,Registros")
}

func TestDataHandler_Export_UnsupportedFormat(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/data/export?format=pdf")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestHealthHandler_GetHealth(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, config.AppVersion, body["version"])
	cacheStats, ok := body["cache"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, cacheStats, "hits")
}
