package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "pontoscli/internal/errors"
)

// APIKeyGate protects the data API with a single shared key supplied in
// the X-API-Key header (or an api_key query parameter for download
// links, where custom headers are not available).
type APIKeyGate struct {
	key    string
	logger *slog.Logger
}

// NewAPIKeyGate creates the gate for the configured key.
func NewAPIKeyGate(key string, logger *slog.Logger) *APIKeyGate {
	return &APIKeyGate{
		key:    key,
		logger: logger.With(slog.String("component", "apikey_middleware")),
	}
}

// Handler rejects requests that do not carry the shared key.
func (g *APIKeyGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = r.URL.Query().Get("api_key")
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(g.key)) != 1 {
			g.logger.WarnContext(r.Context(), "rejected request with invalid api key",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInvalidAPIKey))
			return
		}

		next.ServeHTTP(w, r)
	})
}
