// Package list implements the list-STBs handler.
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

// Service describes the inventory operation the handler needs.
type Service interface {
	List(ctx context.Context, status string) ([]*models.STB, error)
}

// Handler serves STB listing requests.
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
// @Summary List set-top boxes
// @Tags STBs
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} map[string]any "Boxes"
// @Router /stbs/list [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stb.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stbs, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		log.Error("failed to list stbs", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not list stbs"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"stbs":  stbs,
		"count": len(stbs),
	}))
}
