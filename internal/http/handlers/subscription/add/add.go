// Package add implements the add-subscription handler.
package add

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

// Service describes the subscription operation the handler needs.
type Service interface {
	Add(ctx context.Context, subscriberID string, req models.DummySubscribeRequest) (*models.SubscriptionEntry, error)
}

// Handler serves add-subscription requests.
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
// @Summary Subscribe a subscriber to a pack
// @Description Activates a pack for a number of months. Fails with 409 while another subscription is active.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscriber id"
// @Param request body models.DummySubscribeRequest true "Pack and duration"
// @Success 200 {object} map[string]any "New subscription entry"
// @Failure 404 {object} response.ErrorResponse "Subscriber or pack not found"
// @Failure 409 {object} response.ErrorResponse "Active subscription exists"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Router /subscribers/{id}/subscription [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.add"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscribeRequest
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
	entry, err := h.service.Add(r.Context(), subscriberID, req)
	if err != nil {
		log.Error("failed to add subscription", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not add subscription"))
		return
	}

	log.Info("added subscription",
		slog.String("subscriber_id", subscriberID),
		slog.String("pack", entry.PackName))
	render.JSON(w, r, response.OKWithData(entry))
}
