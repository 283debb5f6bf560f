// Package list implements the list-complaints handler.
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

// Service describes the complaint operation the handler needs.
type Service interface {
	List(ctx context.Context, subscriberID, status string) ([]*models.Complaint, error)
}

// Handler serves complaint listing requests.
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
// @Summary List complaints
// @Tags Complaints
// @Produce json
// @Param subscriber_id query string false "Subscriber filter"
// @Param status query string false "Status filter"
// @Success 200 {object} map[string]any "Complaints, newest first"
// @Router /complaints/list [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.complaint.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriberID := r.URL.Query().Get("subscriber_id")
	status := r.URL.Query().Get("status")

	complaints, err := h.service.List(r.Context(), subscriberID, status)
	if err != nil {
		log.Error("failed to list complaints", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not list complaints"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"complaints": complaints,
		"count":      len(complaints),
	}))
}
