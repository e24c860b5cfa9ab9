// Package validate decides whether a member transfer is permitted.
//
// CanMove is pure: it reads the roster, never mutates it, and returns a
// structured Decision. Hard-constraint failures set Allowed=false with a
// reason for the operator; soft-constraint mismatches never block and come
// back as advisory strings for transient display. Advisories are distinct
// from the persistent warnings the diagnostics package derives.
package validate

import (
	"fmt"

	"patrolboard/internal/patrol/models"
)

// Decision is the outcome of validating a move request.
type Decision struct {
	Allowed    bool     `json:"allowed"`
	Reason     string   `json:"reason,omitempty"`
	Advisories []string `json:"advisories,omitempty"`
}

func rejected(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// CanMove validates a member transfer against the current roster.
//
// Hard constraints (rejection, mutation must not occur):
//   - member, source patrol, and target patrol must all resolve
//   - the member must currently belong to the source patrol
//   - the source patrol must keep at least models.MinPatrolSize members
//
// There is no upper bound on the target patrol size.
func CanMove(req models.MoveRequest, roster *models.Roster) Decision {
	source := roster.PatrolByID(req.SourcePatrol)
	if source == nil {
		return rejected("source patrol %s does not exist", req.SourcePatrol)
	}
	target := roster.PatrolByID(req.TargetPatrol)
	if target == nil {
		return rejected("target patrol %s does not exist", req.TargetPatrol)
	}
	mover, ok := roster.Participants[req.MemberID]
	if !ok {
		return rejected("participant %s is not registered", req.MemberID)
	}
	if !source.HasMember(req.MemberID) {
		return rejected("%s is not a member of patrol %d", mover.Name, source.TargetNumber)
	}
	if len(source.Members)-1 < models.MinPatrolSize {
		return rejected("patrol %d cannot drop below the minimum size of %d members",
			source.TargetNumber, models.MinPatrolSize)
	}

	decision := Decision{Allowed: true}

	if dominant, ok := dominantValue(target, roster.Participants, divisionOf); ok && dominant != mover.Division {
		decision.Advisories = append(decision.Advisories, fmt.Sprintf(
			"%s shoots division %q but patrol %d is mostly %q",
			mover.Name, mover.Division, target.TargetNumber, dominant))
	}
	if dominant, ok := dominantValue(target, roster.Participants, genderOf); ok && dominant != mover.Gender {
		decision.Advisories = append(decision.Advisories, fmt.Sprintf(
			"%s would mix genders in patrol %d (mostly %q)",
			mover.Name, target.TargetNumber, dominant))
	}

	return decision
}

func divisionOf(p models.Participant) string { return p.Division }
func genderOf(p models.Participant) string   { return p.Gender }

// dominantValue returns the most frequent attribute value among the
// patrol's current members. Ties break toward the value encountered first
// in member order: deterministic, but otherwise arbitrary. Returns ok=false
// for an empty patrol.
func dominantValue(p *models.Patrol, index models.ParticipantIndex, attr func(models.Participant) string) (string, bool) {
	counts := make(map[string]int, len(p.Members))
	var order []string
	for _, m := range p.Members {
		participant, ok := index[m]
		if !ok {
			continue
		}
		v := attr(participant)
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount > 0
}

// IsReferential reports whether the request names a patrol or participant
// that does not exist in the roster. Such requests are programmer errors
// from a desynchronized caller, not operator mistakes; the service counts
// and logs them separately.
func IsReferential(req models.MoveRequest, roster *models.Roster) bool {
	if roster.PatrolByID(req.SourcePatrol) == nil || roster.PatrolByID(req.TargetPatrol) == nil {
		return true
	}
	_, ok := roster.Participants[req.MemberID]
	return !ok
}
