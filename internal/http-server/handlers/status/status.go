// Package status implements the HTTP handler returning the derived progress
// view of a subscription: remaining days, percentage left and expiry flag.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahiry-dev-29/NestFlow/internal/http-server/response"
	"github.com/tahiry-dev-29/NestFlow/internal/lib/sl"
	"github.com/tahiry-dev-29/NestFlow/internal/models"
)

// Service describes the business logic of the status computation.
type Service interface {
	ComputeStatus(ctx context.Context, id string) (*models.StatusInfo, error)
}

// Handler handles status requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler with the given logger and service.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP computes and returns the status view of one subscription.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.status.ServeHTTP"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing id in url"))
		return
	}

	info, err := h.service.ComputeStatus(r.Context(), id)
	switch {
	case errors.Is(err, models.ErrSubscriptionNotFound):
		log.Error("subscription not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("subscription not found"))
		return
	case errors.Is(err, models.ErrInvalidState):
		log.Error("subscription in invalid state", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("subscription in invalid state"))
		return
	case err != nil:
		log.Error("failed to compute status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to compute status"))
		return
	}

	log.Info("computed subscription status", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": info,
	}))
}
