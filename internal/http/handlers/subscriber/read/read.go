// Package read implements the get-subscriber handler.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Service describes the subscriber operation the handler needs.
type Service interface {
	Get(ctx context.Context, id string) (*models.Subscriber, error)
}

// Handler serves subscriber read requests.
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
// @Summary Get a subscriber with the active subscription
// @Tags Subscribers
// @Produce json
// @Param id path string true "Subscriber id"
// @Success 200 {object} map[string]any "Subscriber"
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Router /subscribers/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	sub, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Error("failed to get subscriber", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not get subscriber"))
		return
	}

	render.JSON(w, r, response.OKWithData(sub))
}
