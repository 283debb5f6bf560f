// Package record implements the record-transaction handler.
package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Service describes the ledger operation the handler needs.
type Service interface {
	Record(ctx context.Context, subscriberID, txType string, amount decimal.Decimal, description string) (*models.Transaction, error)
}

// Handler serves record-transaction requests.
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
// @Summary Record a payment, charge or refund
// @Description Appends a ledger entry and adjusts the balance atomically. Amounts are positive; direction comes from the type.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param id path string true "Subscriber id"
// @Param request body models.DummyTransaction true "Transaction data"
// @Success 200 {object} map[string]any "New transaction"
// @Failure 404 {object} response.ErrorResponse "Subscriber not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Router /subscribers/{id}/transactions [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.record"
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

	subscriberID := chi.URLParam(r, "id")
	tr, err := h.service.Record(r.Context(), subscriberID, req.Type, req.Amount, req.Description)
	if err != nil {
		log.Error("failed to record transaction", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not record transaction"))
		return
	}

	log.Info("recorded transaction",
		slog.String("subscriber_id", subscriberID),
		slog.String("transaction_id", tr.ID))
	render.JSON(w, r, response.OKWithData(tr))
}
