// Package remove implements the delete-subscriber handler.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
)

// Service describes the subscriber operation the handler needs.
type Service interface {
	Delete(ctx context.Context, id string) error
}

// Handler serves subscriber deletion requests.
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
// @Summary Delete a subscriber and all dependent records
// @Tags Subscribers
// @Produce json
// @Param id path string true "Subscriber id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Not found"
// @Router /subscribers/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete subscriber", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not delete subscriber"))
		return
	}

	log.Info("deleted subscriber", slog.String("subscriber_id", id))
	render.JSON(w, r, response.OK())
}
