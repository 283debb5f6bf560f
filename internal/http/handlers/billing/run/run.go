// Package run implements the manual auto-billing trigger.
package run

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Service describes the scheduler operation the handler needs.
type Service interface {
	RunAutoBilling(ctx context.Context) (*models.BillingReport, error)
}

// Handler serves manual billing sweep requests.
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
// @Summary Run the auto-billing sweep now
// @Tags Billing
// @Produce json
// @Success 200 {object} map[string]any "Sweep report"
// @Failure 500 {object} response.ErrorResponse "Sweep failed"
// @Router /billing/run [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.run"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	report, err := h.service.RunAutoBilling(r.Context())
	if err != nil {
		log.Error("auto-billing sweep failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("auto-billing sweep failed"))
		return
	}

	log.Info("auto-billing sweep finished",
		slog.Int("charged", report.ChargedCount),
		slog.Int("failed", len(report.FailedIDs)))
	render.JSON(w, r, response.OKWithData(report))
}
