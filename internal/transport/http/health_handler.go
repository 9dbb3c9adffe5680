package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"pontoscli/internal/config"
	"pontoscli/internal/services"
)

// HealthHandler serves liveness and cache diagnostics.
type HealthHandler struct {
	service *services.DataService
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service *services.DataService) *HealthHandler {
	return &HealthHandler{service: service, started: time.Now()}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":         "ok",
		"version":        config.AppVersion,
		"uptime_seconds": time.Since(h.started).Seconds(),
		"cache":          h.service.CacheStats(),
	})
}
