package nestflow

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tahiry-dev-29/NestFlow/internal/http-server/handlers/create"
	"github.com/tahiry-dev-29/NestFlow/internal/http-server/handlers/list"
	"github.com/tahiry-dev-29/NestFlow/internal/http-server/handlers/read"
	"github.com/tahiry-dev-29/NestFlow/internal/http-server/handlers/remove"
	"github.com/tahiry-dev-29/NestFlow/internal/http-server/handlers/renew"
	"github.com/tahiry-dev-29/NestFlow/internal/http-server/handlers/status"
	"github.com/tahiry-dev-29/NestFlow/internal/http-server/handlers/update"
	"github.com/tahiry-dev-29/NestFlow/internal/http-server/mware"
	subscriptionservice "github.com/tahiry-dev-29/NestFlow/internal/services/subscription"
)

// RegisterRoutes mounts all routes of the application.
func RegisterRoutes(r chi.Router, logger *slog.Logger, subscriptionService *subscriptionservice.Service) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mware.RateLimitMiddleware(logger, 10, 30))
		r.Post("/subscriptions", create.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions", list.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions/{id}", read.New(logger, subscriptionService).ServeHTTP)
		r.Put("/subscriptions/{id}", update.New(logger, subscriptionService).ServeHTTP)
		r.Delete("/subscriptions/{id}", remove.New(logger, subscriptionService).ServeHTTP)
		r.Post("/subscriptions/{id}/renew", renew.New(logger, subscriptionService).ServeHTTP)
		r.Get("/subscriptions/{id}/status", status.New(logger, subscriptionService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
