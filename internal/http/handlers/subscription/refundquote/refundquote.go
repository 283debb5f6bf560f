// Package refundquote implements the refund quote handler. The quote
// is advisory: the operator confirms the final amount on cancel.
package refundquote

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/proration"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
)

// Service describes the subscription operation the handler needs.
type Service interface {
	RefundQuote(ctx context.Context, subscriberID string) (*proration.Quote, error)
}

// Handler serves refund quote requests.
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
// @Summary Suggested prorated refund for the active subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscriber id"
// @Success 200 {object} map[string]any "Refund quote"
// @Failure 404 {object} response.ErrorResponse "No active subscription"
// @Router /subscribers/{id}/subscription/refund-quote [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.refundquote"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriberID := chi.URLParam(r, "id")
	quote, err := h.service.RefundQuote(r.Context(), subscriberID)
	if err != nil {
		log.Error("failed to compute refund quote", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not compute refund quote"))
		return
	}

	render.JSON(w, r, response.OKWithData(quote))
}
