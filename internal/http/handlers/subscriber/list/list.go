// Package list implements the list-subscribers handler.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

const defaultLimit = 50

// Service describes the subscriber operation the handler needs.
type Service interface {
	List(ctx context.Context, filter models.SubscriberFilter) ([]*models.Subscriber, error)
}

// Handler serves subscriber listing requests.
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
// @Summary List subscribers
// @Tags Subscribers
// @Produce json
// @Param region query string false "Region filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]any "Subscribers"
// @Router /subscribers/list [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriber.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := models.SubscriberFilter{
		Region: r.URL.Query().Get("region"),
		Limit:  defaultLimit,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	subscribers, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list subscribers", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not list subscribers"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscribers": subscribers,
		"count":       len(subscribers),
	}))
}
