package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"patrolboard/internal/audit"
	"patrolboard/internal/patrol/diagnostics"
	"patrolboard/internal/patrol/models"
	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
	"patrolboard/pkg/platform/sentinel"
)

func errNoRoster() error {
	return dErrors.New(dErrors.CodeNotFound, "no roster loaded")
}

func errRegenerating() error {
	return dErrors.New(dErrors.CodeConflict, "regeneration in progress")
}

// Load replaces the editing state with the persisted roster for the given
// tournament. When a recovery draft exists it wins over the persisted copy
// and the roster comes up dirty, so unsaved edits from a crashed session
// are not silently lost.
func (s *RosterService) Load(ctx context.Context, tournamentID id.TournamentID) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "RosterService.Load",
		trace.WithAttributes(attribute.String("tournament_id", tournamentID.String())))
	defer span.End()

	start := time.Now()

	roster, fromDraft, err := s.fetchRoster(ctx, tournamentID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := roster.CheckInvariants(); err != nil {
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "loaded roster is inconsistent")
	}

	s.mu.Lock()
	if s.regenerating {
		s.mu.Unlock()
		return Snapshot{}, errRegenerating()
	}
	s.tournamentID = tournamentID
	s.roster = roster
	s.dirty = fromDraft
	s.generation++
	s.stats = diagnostics.ComputeStats(s.roster)
	s.recomputeLocked()
	snap := s.snapshotLocked()
	subscribers := s.subscribers
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveLoad(start)
	}
	s.emitAudit(ctx, audit.ActionRosterLoaded, tournamentID)
	s.logger.InfoContext(ctx, "roster loaded",
		"tournament_id", tournamentID,
		"patrols", len(snap.Roster.Patrols),
		"participants", len(snap.Roster.Participants),
		"from_draft", fromDraft,
	)
	s.notify(EventLoaded, snap, subscribers)
	return snap, nil
}

// fetchRoster prefers a recovery draft over the persisted roster. A draft
// cache error other than a miss falls through to the gateway with a
// warning; the gateway is still the source of record.
func (s *RosterService) fetchRoster(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, bool, error) {
	if s.drafts != nil {
		draft, err := s.drafts.Get(ctx, tournamentID)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "recovered unsaved draft", "tournament_id", tournamentID)
			return draft, true, nil
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			s.logger.WarnContext(ctx, "draft lookup failed", "tournament_id", tournamentID, "error", err)
		}
	}
	roster, err := s.gateway.Load(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, dErrors.Wrap(err, dErrors.CodeNotFound, "tournament roster not found")
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "loading roster")
	}
	return roster, false, nil
}

// Save persists the current roster. The snapshot is taken under the lock
// but the gateway call runs outside it, and the dirty flag is cleared only
// when no mutation happened while the save was in flight.
func (s *RosterService) Save(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "RosterService.Save")
	defer span.End()

	start := time.Now()

	s.mu.Lock()
	if s.roster == nil {
		s.mu.Unlock()
		return errNoRoster()
	}
	if s.regenerating {
		s.mu.Unlock()
		return errRegenerating()
	}
	tournamentID := s.tournamentID
	snapshot := s.roster.Clone()
	generation := s.generation
	s.mu.Unlock()

	if err := s.gateway.Save(ctx, tournamentID, snapshot); err != nil {
		if s.metrics != nil {
			s.metrics.SaveFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "roster save failed", "tournament_id", tournamentID, "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "saving roster")
	}

	s.mu.Lock()
	if s.generation == generation {
		s.dirty = false
	}
	snap := s.snapshotLocked()
	subscribers := s.subscribers
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Saves.Inc()
		s.metrics.ObserveSave(start)
	}
	s.clearDraft(ctx, tournamentID)
	s.emitAudit(ctx, audit.ActionRosterSaved, tournamentID)
	s.logger.InfoContext(ctx, "roster saved", "tournament_id", tournamentID, "dirty", snap.Dirty)
	s.notify(EventSaved, snap, subscribers)
	return nil
}

// Regenerate discards the current assignment and replaces it with a fresh
// one from the gateway. While the regeneration is in flight every mutation
// is rejected; on failure the existing roster is left untouched.
func (s *RosterService) Regenerate(ctx context.Context) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "RosterService.Regenerate")
	defer span.End()

	start := time.Now()

	s.mu.Lock()
	if s.roster == nil {
		s.mu.Unlock()
		return Snapshot{}, errNoRoster()
	}
	if s.regenerating {
		s.mu.Unlock()
		return Snapshot{}, errRegenerating()
	}
	s.regenerating = true
	tournamentID := s.tournamentID
	s.mu.Unlock()

	roster, err := s.gateway.Regenerate(ctx, tournamentID)
	if err == nil {
		err = roster.CheckInvariants()
		if err != nil {
			err = dErrors.Wrap(err, dErrors.CodeInvariantViolation, "regenerated roster is inconsistent")
		}
	}
	if err != nil {
		s.mu.Lock()
		s.regenerating = false
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.RegenFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "roster regeneration failed", "tournament_id", tournamentID, "error", err)
		if dErrors.CodeOf(err) == dErrors.CodeInvariantViolation {
			return Snapshot{}, err
		}
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "regenerating roster")
	}

	s.mu.Lock()
	s.regenerating = false
	s.roster = roster
	s.dirty = false
	s.generation++
	s.stats = diagnostics.ComputeStats(s.roster)
	s.recomputeLocked()
	snap := s.snapshotLocked()
	subscribers := s.subscribers
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Regenerations.Inc()
		s.metrics.ObserveRegenerate(start)
	}
	s.clearDraft(ctx, tournamentID)
	s.emitAudit(ctx, audit.ActionRegenerated, tournamentID)
	s.logger.InfoContext(ctx, "roster regenerated", "tournament_id", tournamentID, "patrols", len(snap.Roster.Patrols))
	s.notify(EventRegenerated, snap, subscribers)
	return snap, nil
}
