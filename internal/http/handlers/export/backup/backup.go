// Package backup implements the snapshot download and restore
// handlers.
package backup

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/cabletrack/cabletrack/internal/http/response"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/services/export"
)

// Service describes the export operations the handlers need.
type Service interface {
	Backup(ctx context.Context) (*export.Snapshot, error)
	Restore(ctx context.Context, snap *export.Snapshot) error
}

// Handler serves backup and restore requests.
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

// Backup godoc
// @Summary Download a full JSON snapshot of all business data
// @Tags Export
// @Produce json
// @Success 200 {object} export.Snapshot
// @Router /export/backup [get]
// @Security BearerAuth
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.export.backup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	snap, err := h.service.Backup(r.Context())
	if err != nil {
		log.Error("failed to build snapshot", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not build snapshot"))
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="cabletrack-backup.json"`)
	render.JSON(w, r, snap)
}

// Restore godoc
// @Summary Replace all business data with an uploaded snapshot
// @Tags Export
// @Accept json
// @Produce json
// @Param request body export.Snapshot true "Snapshot"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Invalid snapshot"
// @Router /export/restore [post]
// @Security BearerAuth
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.export.restore"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var snap export.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		log.Error("failed to decode snapshot", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid snapshot"))
		return
	}

	if err := h.service.Restore(r.Context(), &snap); err != nil {
		log.Error("failed to restore snapshot", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error("could not restore snapshot"))
		return
	}

	log.Info("restored snapshot", slog.Int("subscribers", len(snap.Subscribers)))
	render.JSON(w, r, response.OK())
}
