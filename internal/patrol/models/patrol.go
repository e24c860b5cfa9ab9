package models

import (
	"slices"

	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
)

// MinPatrolSize is the floor a move may never drive a source patrol below.
// There is deliberately no upper bound on patrol size.
const MinPatrolSize = 3

// MaxJudges is the judge slot count per patrol.
const MaxJudges = 2

// Patrol is a target group of participants shooting together.
//
// Invariants (hold after every accepted mutation):
//   - Members is an ordered set: no duplicate ids within a patrol, and a
//     participant appears in at most one patrol across the roster (the
//     roster-level disjointness is enforced by the service, which only moves
//     members between patrols and never inserts from outside).
//   - LeaderID, when set, is an element of Members.
//   - JudgeIDs ⊆ Members, at most MaxJudges entries, no duplicates.
type Patrol struct {
	ID           id.PatrolID        `json:"id"`
	TargetNumber int                `json:"target_number"`
	Members      []id.ParticipantID `json:"members"`
	LeaderID     id.ParticipantID   `json:"leader_id,omitzero"`
	JudgeIDs     []id.ParticipantID `json:"judge_ids"`
}

// NewPatrol validates patrol identity; membership starts empty.
func NewPatrol(pid id.PatrolID, targetNumber int) (*Patrol, error) {
	if pid.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "patrol id is required")
	}
	if targetNumber <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "target number must be positive")
	}
	return &Patrol{ID: pid, TargetNumber: targetNumber}, nil
}

// HasMember reports whether the participant is in this patrol.
func (p *Patrol) HasMember(memberID id.ParticipantID) bool {
	return slices.Contains(p.Members, memberID)
}

// HasJudge reports whether the participant holds a judge slot.
func (p *Patrol) HasJudge(memberID id.ParticipantID) bool {
	return slices.Contains(p.JudgeIDs, memberID)
}

// AppendMember adds the participant to the end of the member list. The
// member joins with no roles; leader/judge flags never carry across patrols.
func (p *Patrol) AppendMember(memberID id.ParticipantID) {
	p.Members = append(p.Members, memberID)
}

// RemoveMember drops the participant from the member list and strips any
// roles it held here. No-op when the participant is not a member.
func (p *Patrol) RemoveMember(memberID id.ParticipantID) {
	i := slices.Index(p.Members, memberID)
	if i < 0 {
		return
	}
	p.Members = slices.Delete(p.Members, i, i+1)
	if p.LeaderID == memberID {
		p.LeaderID = id.ParticipantID{}
	}
	p.removeJudge(memberID)
}

// SetLeader assigns the patrol leader, replacing any prior leader. The
// caller is responsible for memberID already being a member.
func (p *Patrol) SetLeader(memberID id.ParticipantID) {
	p.LeaderID = memberID
}

// AddJudge fills a judge slot. No-op when both slots are taken or the
// participant already judges, keeping repeated requests idempotent.
func (p *Patrol) AddJudge(memberID id.ParticipantID) {
	if len(p.JudgeIDs) >= MaxJudges || p.HasJudge(memberID) {
		return
	}
	p.JudgeIDs = append(p.JudgeIDs, memberID)
}

// ClearRoles removes leader and judge flags from the participant without
// touching membership.
func (p *Patrol) ClearRoles(memberID id.ParticipantID) {
	if p.LeaderID == memberID {
		p.LeaderID = id.ParticipantID{}
	}
	p.removeJudge(memberID)
}

func (p *Patrol) removeJudge(memberID id.ParticipantID) {
	if i := slices.Index(p.JudgeIDs, memberID); i >= 0 {
		p.JudgeIDs = slices.Delete(p.JudgeIDs, i, i+1)
	}
}

// Clone returns an independent deep copy.
func (p *Patrol) Clone() *Patrol {
	cp := *p
	cp.Members = slices.Clone(p.Members)
	cp.JudgeIDs = slices.Clone(p.JudgeIDs)
	return &cp
}

// CheckInvariants verifies the patrol-local invariants. Used by tests and
// by the store boundary after regeneration; accepted mutations preserve
// these by construction.
func (p *Patrol) CheckInvariants() error {
	seen := make(map[id.ParticipantID]struct{}, len(p.Members))
	for _, m := range p.Members {
		if _, dup := seen[m]; dup {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "duplicate member %s in patrol %s", m, p.ID)
		}
		seen[m] = struct{}{}
	}
	if !p.LeaderID.IsNil() {
		if _, ok := seen[p.LeaderID]; !ok {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "leader %s is not a member of patrol %s", p.LeaderID, p.ID)
		}
	}
	if len(p.JudgeIDs) > MaxJudges {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "patrol %s has %d judges", p.ID, len(p.JudgeIDs))
	}
	seenJudges := make(map[id.ParticipantID]struct{}, len(p.JudgeIDs))
	for _, j := range p.JudgeIDs {
		if _, dup := seenJudges[j]; dup {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "duplicate judge %s in patrol %s", j, p.ID)
		}
		seenJudges[j] = struct{}{}
		if _, ok := seen[j]; !ok {
			return dErrors.Newf(dErrors.CodeInvariantViolation, "judge %s is not a member of patrol %s", j, p.ID)
		}
	}
	return nil
}
