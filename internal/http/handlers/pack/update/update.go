// Package update implements the update-pack handler.
package update

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

// Service describes the catalog operation the handler needs.
type Service interface {
	Update(ctx context.Context, id int, req models.DummyPack) (*models.Pack, error)
}

// Handler serves update-pack requests.
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
// @Summary Update a pack
// @Description Changes the catalog only; existing subscription entries keep their price snapshot.
// @Tags Packs
// @Accept json
// @Produce json
// @Param id path int true "Pack id"
// @Param request body models.DummyPack true "Updated pack"
// @Success 200 {object} map[string]any "Updated pack"
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Router /packs/{id} [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pack.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid pack id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid pack id"))
		return
	}

	var req models.DummyPack
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

	pack, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		log.Error("failed to update pack", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not update pack"))
		return
	}

	log.Info("updated pack", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(pack))
}
