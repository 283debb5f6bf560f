// Package cancel implements the cancel-subscription handler. The body
// carries the operator-confirmed refund, which may differ from the
// suggested prorated amount but never exceeds the charged total.
package cancel

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Service describes the subscription operation the handler needs.
type Service interface {
	Cancel(ctx context.Context, subscriberID string, refund decimal.Decimal) error
}

// Handler serves cancel-subscription requests.
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
// @Summary Cancel the active subscription with a refund
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscriber id"
// @Param request body models.DummyCancelRequest true "Confirmed refund amount"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "No active subscription"
// @Failure 422 {object} response.ErrorResponse "Refund out of bounds"
// @Router /subscribers/{id}/subscription [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	subscriberID := chi.URLParam(r, "id")
	if err := h.service.Cancel(r.Context(), subscriberID, req.Refund); err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not cancel subscription"))
		return
	}

	log.Info("cancelled subscription",
		slog.String("subscriber_id", subscriberID),
		slog.String("refund", req.Refund.String()))
	render.JSON(w, r, response.OK())
}
