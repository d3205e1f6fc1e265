package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"frontoffice-voice-console/internal/observability"
	"frontoffice-voice-console/internal/observability/metrics"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger(metrics.DefaultMetrics))

	// Health endpoints
	r.Get("/v1/liveness", h.Liveness)
	r.Get("/v1/readiness", h.Readiness)

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/pipeline/process", h.ProcessPipeline)
		r.Post("/intent/route", h.RouteIntent)
		r.Post("/stt/transcribe", h.Transcribe)
		r.Post("/tts/speak", h.Speak)
	})

	return r
}
