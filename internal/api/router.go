package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Service BookingService
	DB      Pinger
	Redis   Pinger
	Metrics http.Handler // defaults to promhttp.Handler()
	Logger  zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.DB, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Route("/practitioners/{id}", func(r chi.Router) {
		r.Get("/bookings", listBookingsHandler(cfg.Service))
		r.Post("/bookings", createBookingHandler(cfg.Service))
		r.Delete("/bookings/{bookingID}", cancelBookingHandler(cfg.Service))
		r.Get("/availability", availabilityHandler(cfg.Service))
	})
	r.Post("/bookings/{id}/appointment", confirmBookingHandler(cfg.Service))
	r.Patch("/appointments/{id}/notes", updateNotesHandler(cfg.Service))

	return r
}
