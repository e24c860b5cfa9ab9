// Package handler exposes roster editing over HTTP. All endpoints are JSON
// and sit behind the operator-token middleware; ids arriving in paths and
// bodies are parsed through pkg/domain before they reach the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/service"
	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
	"patrolboard/pkg/platform/httputil"
	"patrolboard/pkg/requestcontext"
)

// RosterService defines the service surface the handler drives.
type RosterService interface {
	Load(ctx context.Context, tournamentID id.TournamentID) (service.Snapshot, error)
	Snapshot() (service.Snapshot, error)
	Warnings() ([]models.Warning, error)
	Stats(recompute bool) (models.PatrolStats, error)
	MoveMember(ctx context.Context, req models.MoveRequest) (service.MoveResult, error)
	ChangeRole(ctx context.Context, req models.RoleChangeRequest) (service.Snapshot, error)
	Save(ctx context.Context) error
	Regenerate(ctx context.Context) (service.Snapshot, error)
	LoadedTournament() (id.TournamentID, bool)
}

// Handler wires roster endpoints to the roster service.
type Handler struct {
	service RosterService
	logger  *slog.Logger
}

// New constructs a roster handler with its dependencies.
func New(svc RosterService, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts roster endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tournaments/{tournamentID}/roster", func(r chi.Router) {
		r.Post("/load", h.HandleLoad)
		r.Get("/", h.HandleSnapshot)
		r.Post("/moves", h.HandleMove)
		r.Post("/roles", h.HandleRoleChange)
		r.Post("/save", h.HandleSave)
		r.Post("/regenerate", h.HandleRegenerate)
		r.Get("/warnings", h.HandleWarnings)
		r.Get("/stats", h.HandleStats)
		r.Get("/report", h.HandleReport)
	})
}

// pathTournamentID parses the tournament id from the URL.
func pathTournamentID(r *http.Request) (id.TournamentID, error) {
	return id.ParseTournamentID(chi.URLParam(r, "tournamentID"))
}

// requireLoaded checks that the tournament in the path is the one being
// edited. A mismatch means the caller is talking about a roster this
// session does not hold.
func (h *Handler) requireLoaded(w http.ResponseWriter, r *http.Request) bool {
	tournamentID, err := pathTournamentID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return false
	}
	loaded, ok := h.service.LoadedTournament()
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no roster loaded"))
		return false
	}
	if loaded != tournamentID {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeConflict, "tournament %s is not the loaded roster", tournamentID))
		return false
	}
	return true
}

// HandleLoad handles POST /tournaments/{tournamentID}/roster/load.
func (h *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tournamentID, err := pathTournamentID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.Load(ctx, tournamentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "roster load failed",
			"request_id", requestcontext.RequestID(ctx),
			"tournament_id", tournamentID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// HandleSnapshot handles GET /tournaments/{tournamentID}/roster.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.requireLoaded(w, r) {
		return
	}
	snap, err := h.service.Snapshot()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// HandleMove handles POST /tournaments/{tournamentID}/roster/moves.
// A validator rejection is a 200 with accepted=false: an expected outcome
// the operator sees as a transient message, not an error class.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireLoaded(w, r) {
		return
	}
	req, ok := httputil.DecodeJSON[moveRequest](w, r, h.logger)
	if !ok {
		return
	}
	domainReq, err := req.toDomain()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	start := time.Now()
	result, err := h.service.MoveMember(ctx, domainReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "move failed",
			"request_id", requestcontext.RequestID(ctx),
			"member_id", domainReq.MemberID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "move handled",
		"request_id", requestcontext.RequestID(ctx),
		"accepted", result.Accepted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleRoleChange handles POST /tournaments/{tournamentID}/roster/roles.
func (h *Handler) HandleRoleChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireLoaded(w, r) {
		return
	}
	req, ok := httputil.DecodeJSON[roleChangeRequest](w, r, h.logger)
	if !ok {
		return
	}
	domainReq, err := req.toDomain()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snap, err := h.service.ChangeRole(ctx, domainReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "role change failed",
			"request_id", requestcontext.RequestID(ctx),
			"patrol_id", domainReq.PatrolID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// HandleSave handles POST /tournaments/{tournamentID}/roster/save.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireLoaded(w, r) {
		return
	}
	if err := h.service.Save(ctx); err != nil {
		h.logger.ErrorContext(ctx, "save failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saveResponse{Saved: true})
}

// HandleRegenerate handles POST /tournaments/{tournamentID}/roster/regenerate.
// Regeneration discards every manual adjustment, so the request body must
// carry an explicit confirmation.
func (h *Handler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireLoaded(w, r) {
		return
	}
	req, ok := httputil.DecodeJSON[regenerateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if !req.Confirm {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "regeneration must be confirmed"))
		return
	}

	snap, err := h.service.Regenerate(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "regeneration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

// HandleWarnings handles GET /tournaments/{tournamentID}/roster/warnings.
func (h *Handler) HandleWarnings(w http.ResponseWriter, r *http.Request) {
	if !h.requireLoaded(w, r) {
		return
	}
	warnings, err := h.service.Warnings()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, warningsResponse{Warnings: warnings})
}

// HandleStats handles GET /tournaments/{tournamentID}/roster/stats. The
// stored snapshot only moves on load/regenerate; this endpoint is the
// explicit recompute path.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireLoaded(w, r) {
		return
	}
	stats, err := h.service.Stats(true)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

// HandleReport handles GET /tournaments/{tournamentID}/roster/report.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireLoaded(w, r) {
		return
	}
	snap, err := h.service.Snapshot()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, buildReport(snap))
}
