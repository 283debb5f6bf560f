// Package create implements the open-complaint handler.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Service describes the complaint operation the handler needs.
type Service interface {
	Open(ctx context.Context, req models.DummyComplaint) (*models.Complaint, error)
}

// Handler serves open-complaint requests.
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
// @Summary Open a complaint for a subscriber
// @Tags Complaints
// @Accept json
// @Produce json
// @Param request body models.DummyComplaint true "Complaint data"
// @Success 200 {object} map[string]any "New complaint"
// @Failure 404 {object} response.ErrorResponse "Subscriber not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Router /complaints [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.complaint.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyComplaint
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

	c, err := h.service.Open(r.Context(), req)
	if err != nil {
		log.Error("failed to open complaint", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not open complaint"))
		return
	}

	log.Info("opened complaint", slog.Int("id", c.ID))
	render.JSON(w, r, response.OKWithData(c))
}
