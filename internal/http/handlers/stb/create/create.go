// Package create implements the add-STB handler.
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

// Service describes the inventory operation the handler needs.
type Service interface {
	Create(ctx context.Context, req models.DummySTB) (*models.STB, error)
}

// Handler serves add-STB requests.
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
// @Summary Add a set-top box to inventory
// @Tags STBs
// @Accept json
// @Produce json
// @Param request body models.DummySTB true "Box data"
// @Success 200 {object} map[string]any "New box"
// @Failure 409 {object} response.ErrorResponse "Serial number taken"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Router /stbs [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stb.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySTB
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

	stb, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to add stb", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not add stb"))
		return
	}

	log.Info("added stb", slog.String("serial", stb.SerialNumber))
	render.JSON(w, r, response.OKWithData(stb))
}
