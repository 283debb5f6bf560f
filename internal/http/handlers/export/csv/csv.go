// Package csv implements the CSV report handlers.
package csv

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
)

// Service describes the export operations the handlers need.
type Service interface {
	SubscribersCSV(ctx context.Context) ([]byte, error)
	TransactionsCSV(ctx context.Context) ([]byte, error)
	SubscriptionsCSV(ctx context.Context) ([]byte, error)
	BillingHistoryCSV(ctx context.Context) ([]byte, error)
}

// Handler serves CSV report downloads.
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

// Subscribers godoc
// @Summary Download all subscribers as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {string} string "CSV data"
// @Router /export/subscribers.csv [get]
// @Security BearerAuth
func (h *Handler) Subscribers(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, "subscribers.csv", h.service.SubscribersCSV)
}

// Transactions godoc
// @Summary Download the full ledger as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {string} string "CSV data"
// @Router /export/transactions.csv [get]
// @Security BearerAuth
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, "transactions.csv", h.service.TransactionsCSV)
}

// Subscriptions godoc
// @Summary Download all subscription entries as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {string} string "CSV data"
// @Router /export/subscriptions.csv [get]
// @Security BearerAuth
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, "subscriptions.csv", h.service.SubscriptionsCSV)
}

// BillingHistory godoc
// @Summary Download the auto-billing audit trail as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {string} string "CSV data"
// @Router /export/billing-history.csv [get]
// @Security BearerAuth
func (h *Handler) BillingHistory(w http.ResponseWriter, r *http.Request) {
	h.serveCSV(w, r, "billing-history.csv", h.service.BillingHistoryCSV)
}

func (h *Handler) serveCSV(w http.ResponseWriter, r *http.Request, filename string, build func(context.Context) ([]byte, error)) {
	const op = "handlers.export.csv"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("file", filename),
	)

	data, err := build(r.Context())
	if err != nil {
		log.Error("failed to build csv export", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not build export"))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write csv export", sl.Err(err))
	}
}
