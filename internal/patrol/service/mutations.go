package service

import (
	"context"
	"fmt"

	"patrolboard/internal/audit"
	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/validate"
	dErrors "patrolboard/pkg/domain-errors"
)

// MoveMember moves a participant between patrols. A validator rejection is
// not an error: it comes back as a MoveResult with Accepted=false and a
// reason for transient display. Referential rejections (the request names
// ids the roster does not have) indicate a desynchronized caller and are
// returned as conflict errors instead.
func (s *RosterService) MoveMember(ctx context.Context, req models.MoveRequest) (MoveResult, error) {
	if err := req.Validate(); err != nil {
		return MoveResult{}, err
	}

	s.mu.Lock()
	if s.roster == nil {
		s.mu.Unlock()
		return MoveResult{}, errNoRoster()
	}
	if s.regenerating {
		s.mu.Unlock()
		return MoveResult{}, errRegenerating()
	}

	decision := validate.CanMove(req, s.roster)
	if !decision.Allowed {
		referential := validate.IsReferential(req, s.roster)
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.MovesRejected.Inc()
		}
		if referential {
			if s.metrics != nil {
				s.metrics.DesyncRejections.Inc()
			}
			s.logger.ErrorContext(ctx, "move request references unknown roster state",
				"member_id", req.MemberID,
				"source_patrol_id", req.SourcePatrol,
				"target_patrol_id", req.TargetPatrol,
				"reason", decision.Reason,
			)
			return MoveResult{}, dErrors.New(dErrors.CodeConflict, decision.Reason)
		}
		s.logger.InfoContext(ctx, "move rejected", "member_id", req.MemberID, "reason", decision.Reason)
		return MoveResult{Accepted: false, Reason: decision.Reason}, nil
	}

	source := s.roster.PatrolByID(req.SourcePatrol)
	target := s.roster.PatrolByID(req.TargetPatrol)
	source.RemoveMember(req.MemberID)
	target.AppendMember(req.MemberID)
	s.dirty = true
	s.generation++
	s.recomputeLocked()
	snap := s.snapshotLocked()
	result := MoveResult{
		Accepted:   true,
		Advisories: decision.Advisories,
		Warnings:   snap.Warnings,
	}
	subscribers := s.subscribers
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.MovesAccepted.Inc()
	}
	s.writeDraft(ctx, snap)
	s.emitAudit(ctx, audit.ActionMemberMoved, snap.Roster.TournamentID,
		withPatrol(req.TargetPatrol),
		withMember(req.MemberID),
		withDetail(fmt.Sprintf("from patrol %s", req.SourcePatrol)),
	)
	s.logger.InfoContext(ctx, "member moved",
		"member_id", req.MemberID,
		"source_patrol_id", req.SourcePatrol,
		"target_patrol_id", req.TargetPatrol,
		"advisories", len(result.Advisories),
	)
	s.notify(EventMoved, snap, subscribers)
	return result, nil
}

// ChangeRole assigns or clears a role slot on a patrol. The operation
// always marks the roster dirty and recomputes warnings, even when the
// change is an idempotent no-op, so the caller sees a consistent
// post-change warning list.
func (s *RosterService) ChangeRole(ctx context.Context, req models.RoleChangeRequest) (Snapshot, error) {
	if err := req.Validate(); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.roster == nil {
		s.mu.Unlock()
		return Snapshot{}, errNoRoster()
	}
	if s.regenerating {
		s.mu.Unlock()
		return Snapshot{}, errRegenerating()
	}

	patrol := s.roster.PatrolByID(req.PatrolID)
	if patrol == nil {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.DesyncRejections.Inc()
		}
		s.logger.ErrorContext(ctx, "role change references unknown patrol", "patrol_id", req.PatrolID)
		return Snapshot{}, dErrors.Newf(dErrors.CodeConflict, "patrol %s not in roster", req.PatrolID)
	}
	if !patrol.HasMember(req.MemberID) {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.DesyncRejections.Inc()
		}
		s.logger.ErrorContext(ctx, "role change references non-member",
			"patrol_id", req.PatrolID, "member_id", req.MemberID)
		return Snapshot{}, dErrors.Newf(dErrors.CodeConflict, "member %s not in patrol %s", req.MemberID, req.PatrolID)
	}

	switch req.Role {
	case models.RoleLeader:
		patrol.SetLeader(req.MemberID)
	case models.RoleJudge:
		patrol.AddJudge(req.MemberID)
	case models.RoleRemove:
		patrol.ClearRoles(req.MemberID)
	}
	s.dirty = true
	s.generation++
	s.recomputeLocked()
	snap := s.snapshotLocked()
	subscribers := s.subscribers
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RoleChanges.Inc()
	}
	s.writeDraft(ctx, snap)
	s.emitAudit(ctx, audit.ActionRoleChanged, snap.Roster.TournamentID,
		withPatrol(req.PatrolID),
		withMember(req.MemberID),
		withDetail(string(req.Role)),
	)
	s.logger.InfoContext(ctx, "role changed",
		"patrol_id", req.PatrolID,
		"member_id", req.MemberID,
		"role", string(req.Role),
	)
	s.notify(EventRoleChanged, snap, subscribers)
	return snap, nil
}
