// Package status implements the STB state transition handler. The
// body carries an action (assign, unassign, faulty, repair, retire);
// assign also needs a subscriber id.
package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Request is the transition body.
type Request struct {
	Action       string `json:"action" validate:"required,oneof=assign unassign faulty repair retire"`
	SubscriberID string `json:"subscriber_id,omitempty"`
}

// Service describes the inventory operations the handler needs.
type Service interface {
	Assign(ctx context.Context, stbID int, subscriberID string) (*models.STB, error)
	Unassign(ctx context.Context, stbID int) (*models.STB, error)
	MarkFaulty(ctx context.Context, stbID int) (*models.STB, error)
	Repair(ctx context.Context, stbID int) (*models.STB, error)
	Retire(ctx context.Context, stbID int) (*models.STB, error)
}

// Handler serves STB transition requests.
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
// @Summary Move a set-top box through its state machine
// @Tags STBs
// @Accept json
// @Produce json
// @Param id path int true "Box id"
// @Param request body Request true "Action"
// @Success 200 {object} map[string]any "Updated box"
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Failure 409 {object} response.ErrorResponse "Transition not allowed"
// @Router /stbs/{id}/status [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stb.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid stb id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid stb id"))
		return
	}

	var req Request
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

	var stb *models.STB
	switch req.Action {
	case "assign":
		if req.SubscriberID == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("subscriber_id is required for assign"))
			return
		}
		stb, err = h.service.Assign(r.Context(), id, req.SubscriberID)
	case "unassign":
		stb, err = h.service.Unassign(r.Context(), id)
	case "faulty":
		stb, err = h.service.MarkFaulty(r.Context(), id)
	case "repair":
		stb, err = h.service.Repair(r.Context(), id)
	case "retire":
		stb, err = h.service.Retire(r.Context(), id)
	}
	if err != nil {
		log.Error("failed to transition stb", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not transition stb"))
		return
	}

	log.Info("transitioned stb", slog.Int("id", id), slog.String("action", req.Action))
	render.JSON(w, r, response.OKWithData(stb))
}
