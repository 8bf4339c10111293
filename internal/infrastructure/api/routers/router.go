package routers

import (
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mufasadev/txwebhook/internal/di"
	http2 "github.com/mufasadev/txwebhook/internal/infrastructure/api/http"
	"github.com/mufasadev/txwebhook/internal/infrastructure/api/middlewares"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(container *di.Container, metricsEnabled bool) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewares.RequestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/", container.HealthHandler.Health)
	if metricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	// Set up v1 routes with a path prefix
	router.Route("/v1", func(r chi.Router) {
		r.Route("/webhooks/transactions", func(r chi.Router) {
			r.Use(middlewares.JSONContentTypeMiddleware)
			r.Post("/", container.WebhookHandler.ReceiveTransaction)
		})
		r.Get("/stats", container.TransactionHandler.GetStats)
		r.Route("/transactions", func(r chi.Router) {
			th := container.TransactionHandler
			r.Get("/", th.ListTransactions)
			r.With(middlewares.TransactionIDValidationMiddleware).
				Get(fmt.Sprintf("/{%s}", http2.TransactionIDParam), th.GetTransaction)
		})
	})

	return router
}
