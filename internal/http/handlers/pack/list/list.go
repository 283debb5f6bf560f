// Package list implements the list-packs handler.
package list

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

// Service describes the catalog operation the handler needs.
type Service interface {
	List(ctx context.Context) ([]*models.Pack, error)
}

// Handler serves pack listing requests.
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
// @Summary List the pack catalog
// @Tags Packs
// @Produce json
// @Success 200 {object} map[string]any "Packs"
// @Router /packs/list [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pack.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	packs, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list packs", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not list packs"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"packs": packs,
		"count": len(packs),
	}))
}
