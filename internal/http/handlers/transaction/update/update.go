// Package update implements the update-transaction handler.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Service describes the ledger operation the handler needs.
type Service interface {
	Update(ctx context.Context, transactionID string, req models.DummyTransaction) (*models.Transaction, error)
}

// Handler serves update-transaction requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Correct a recorded transaction
// @Description Replaces the entry; the balance ends up as if the new entry had been recorded originally.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction id"
// @Param request body models.DummyTransaction true "Corrected data"
// @Success 200 {object} map[string]any "Updated transaction"
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Router /transactions/{id} [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyTransaction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id := chi.URLParam(r, "id")
	tr, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update transaction", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not update transaction"))
		return
	}

	log.Info("updated transaction", slog.String("transaction_id", id))
	render.JSON(w, r, response.OKWithData(tr))
}
