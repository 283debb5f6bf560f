// Package history implements the subscription history handler.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Service describes the subscription operation the handler needs.
type Service interface {
	History(ctx context.Context, subscriberID string) ([]*models.SubscriptionEntry, error)
}

// Handler serves subscription history requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Full subscription history of a subscriber
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscriber id"
// @Success 200 {object} map[string]any "Entries, oldest first"
// @Router /subscribers/{id}/subscription/history [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.history"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriberID := chi.URLParam(r, "id")
	entries, err := h.service.History(r.Context(), subscriberID)
	if err != nil {
		log.Error("failed to list subscription history", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not list subscription history"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"entries": entries,
		"count":   len(entries),
	}))
}
