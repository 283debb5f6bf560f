// Package history implements the billing history handler.
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

// Service describes the billing operation the handler needs.
type Service interface {
	BillingHistory(ctx context.Context, subscriberID string) ([]*models.BillingHistoryEntry, error)
}

// Handler serves billing history requests.
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
// @Summary Auto-billing audit trail of a subscriber
// @Tags Billing
// @Produce json
// @Param id path string true "Subscriber id"
// @Success 200 {object} map[string]any "History rows, newest first"
// @Router /subscribers/{id}/billing-history [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.history"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriberID := chi.URLParam(r, "id")
	entries, err := h.service.BillingHistory(r.Context(), subscriberID)
	if err != nil {
		log.Error("failed to list billing history", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not list billing history"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"entries": entries,
		"count":   len(entries),
	}))
}
