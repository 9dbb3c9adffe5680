// Package http contains the chi HTTP handlers exposing the aggregated
// point data to the dashboard, statistics cards, records browser and
// export consumers.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "pontoscli/internal/errors"
	"pontoscli/internal/services"
)

// DataHandler handles data-related HTTP requests.
type DataHandler struct {
	service *services.DataService
	logger  *slog.Logger
}

// NewDataHandler creates a new data handler.
func NewDataHandler(service *services.DataService, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		service: service,
		logger:  logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/weekly", h.GetWeeklySeries)
	r.Get("/monthly", h.GetMonthlySeries)
	r.Get("/team", h.GetTeamDistribution)
	r.Get("/summary", h.GetSummary)
	r.Get("/records", h.GetRecords)
	r.Get("/goals", h.GetGoals)
	r.Post("/refresh", h.Refresh)
	r.Get("/export", h.Export)

	return r
}

// GetWeeklySeries handles GET /api/data/weekly
func (h *DataHandler) GetWeeklySeries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.WeeklySeries(r.Context())
	if err != nil {
		h.renderPipelineError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"success": true, "series": rows})
}

// GetMonthlySeries handles GET /api/data/monthly
func (h *DataHandler) GetMonthlySeries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.MonthlySeries(r.Context())
	if err != nil {
		h.renderPipelineError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"success": true, "series": rows})
}

// GetTeamDistribution handles GET /api/data/team
func (h *DataHandler) GetTeamDistribution(w http.ResponseWriter, r *http.Request) {
	slices, err := h.service.TeamDistribution(r.Context())
	if err != nil {
		h.renderPipelineError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"success": true, "team": slices})
}

// GetSummary handles GET /api/data/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.renderPipelineError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"success": true, "summary": summary})
}

// GetRecords handles GET /api/data/records with optional entity, week
// and q query parameters.
func (h *DataHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	filter := services.RecordFilter{
		Entity: r.URL.Query().Get("entity"),
		Query:  r.URL.Query().Get("q"),
	}

	if weekParam := r.URL.Query().Get("week"); weekParam != "" {
		week, err := strconv.Atoi(weekParam)
		if err != nil || week < 1 || week > 5 {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.ErrValidation("week", "week must be an integer between 1 and 5")))
			return
		}
		filter.Week = week
	}

	records, err := h.service.Records(r.Context(), filter)
	if err != nil {
		h.renderPipelineError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"count":   len(records),
		"records": records,
	})
}

// GetGoals handles GET /api/data/goals
func (h *DataHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	goals := h.service.Goals()
	render.JSON(w, r, map[string]interface{}{"success": true, "goals": goals})
}

// Refresh handles POST /api/data/refresh: explicit cache invalidation
// plus immediate reingestion.
func (h *DataHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	folder, err := h.service.Refresh(r.Context())
	if err != nil {
		h.renderPipelineError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success":    true,
		"statistics": folder.Stats,
	})
}

// Export handles GET /api/data/export?format=xlsx|csv and streams the
// archive as a download.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}

	var (
		payload     []byte
		err         error
		contentType string
		extension   string
	)

	switch format {
	case "xlsx":
		payload, err = h.service.ExportExcel(r.Context())
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		extension = "xlsx"
	case "csv":
		payload, err = h.service.ExportCSV(r.Context())
		contentType = "text/csv; charset=utf-8"
		extension = "csv"
	default:
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("format", fmt.Sprintf("unsupported export format: %s", format))))
		return
	}

	if err != nil {
		h.renderPipelineError(w, r, err)
		return
	}

	filename := fmt.Sprintf("pontos-%s.%s", time.Now().Format("2006-01-02"), extension)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.Write(payload)
}

func (h *DataHandler) renderPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "pipeline read failed",
		slog.String("error", err.Error()))
	render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrPipelineExecution(err)))
}
