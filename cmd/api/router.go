package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/expo-leads/internal/infra/http/handlers"
	"github.com/xavierca1/expo-leads/internal/infra/http/middleware"
)

type routes struct {
	visitors  *handlers.VisitorHandler
	dashboard *handlers.DashboardHandler
	health    *handlers.HealthHandler
}

func newRouter(rt routes, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(60 * time.Second))

		r.Route("/visitors", func(r chi.Router) {
			r.Post("/", rt.visitors.Register)
			r.Get("/all", rt.visitors.ListAll)
			r.Get("/exists", rt.visitors.Exists)
			r.Get("/exhibition/{exhibitionId}", rt.visitors.ListByExhibition)
		})

		r.Get("/dashboard", rt.dashboard.Handle)
	})

	return r
}
