// Package list implements the list-transactions handler.
package list

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

// Service describes the ledger operation the handler needs.
type Service interface {
	List(ctx context.Context, subscriberID string) ([]*models.Transaction, error)
}

// Handler serves transaction listing requests.
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
// @Summary Ledger of a subscriber, oldest first
// @Tags Transactions
// @Produce json
// @Param id path string true "Subscriber id"
// @Success 200 {object} map[string]any "Transactions"
// @Router /subscribers/{id}/transactions [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriberID := chi.URLParam(r, "id")
	transactions, err := h.service.List(r.Context(), subscriberID)
	if err != nil {
		log.Error("failed to list transactions", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not list transactions"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	}))
}
