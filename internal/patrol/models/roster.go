package models

import (
	"sort"

	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
)

// Roster is the full editing unit: all patrols of a tournament plus the
// participant index. Created wholesale by load/regenerate, mutated
// incrementally by moves and role changes, and discarded wholesale on the
// next load/regenerate.
type Roster struct {
	TournamentID id.TournamentID  `json:"tournament_id"`
	Patrols      []*Patrol        `json:"patrols"`
	Participants ParticipantIndex `json:"participants"`
}

// PatrolByID resolves a patrol in the roster, or nil.
func (r *Roster) PatrolByID(patrolID id.PatrolID) *Patrol {
	for _, p := range r.Patrols {
		if p.ID == patrolID {
			return p
		}
	}
	return nil
}

// SortPatrols orders patrols for display: target number ascending, id as a
// deterministic tiebreak.
func (r *Roster) SortPatrols() {
	sort.SliceStable(r.Patrols, func(i, j int) bool {
		if r.Patrols[i].TargetNumber != r.Patrols[j].TargetNumber {
			return r.Patrols[i].TargetNumber < r.Patrols[j].TargetNumber
		}
		return r.Patrols[i].ID.String() < r.Patrols[j].ID.String()
	})
}

// Clone returns an independent deep copy. Snapshots handed to observers and
// gateways are clones; nothing outside the service ever aliases the live
// roster.
func (r *Roster) Clone() *Roster {
	if r == nil {
		return nil
	}
	cp := &Roster{
		TournamentID: r.TournamentID,
		Patrols:      make([]*Patrol, len(r.Patrols)),
		Participants: r.Participants.Clone(),
	}
	for i, p := range r.Patrols {
		cp.Patrols[i] = p.Clone()
	}
	return cp
}

// CheckInvariants verifies per-patrol invariants plus roster-wide
// disjointness: no participant id appears in more than one patrol, and every
// member resolves in the participant index.
func (r *Roster) CheckInvariants() error {
	assigned := make(map[id.ParticipantID]id.PatrolID)
	for _, p := range r.Patrols {
		if err := p.CheckInvariants(); err != nil {
			return err
		}
		for _, m := range p.Members {
			if other, taken := assigned[m]; taken {
				return dErrors.Newf(dErrors.CodeInvariantViolation,
					"participant %s assigned to patrols %s and %s", m, other, p.ID)
			}
			assigned[m] = p.ID
			if _, ok := r.Participants[m]; !ok {
				return dErrors.Newf(dErrors.CodeInvariantViolation,
					"member %s of patrol %s missing from participant index", m, p.ID)
			}
		}
	}
	return nil
}
