// Package diagnostics derives quality signals from roster state.
//
// Both entry points are pure: they read the roster, allocate fresh result
// values, and share no state with their input. The service recomputes
// warnings in full after every mutation; cost is linear in total member
// count, which is fine for tens of patrols and low hundreds of archers.
package diagnostics

import (
	"fmt"

	"patrolboard/internal/patrol/models"
)

// sizeSpreadTolerance is the allowed gap between the largest and smallest
// patrol before the roster counts as imbalanced.
const sizeSpreadTolerance = 2

// RecomputeWarnings derives the full warning list from the roster.
//
// Warnings come out grouped by patrol in display order. Within a patrol the
// checks run in a fixed order (judge club clash, judge count, leader,
// division mix, gender mix, size imbalance) and every applicable check
// emits; the checks are not mutually exclusive.
func RecomputeWarnings(roster *models.Roster) []models.Warning {
	ordered := orderedPatrols(roster)

	minSize, maxSize := sizeSpread(ordered)
	imbalanced := maxSize-minSize > sizeSpreadTolerance

	warnings := make([]models.Warning, 0, len(ordered))
	for _, p := range ordered {
		warnings = appendPatrolWarnings(warnings, p, roster.Participants)
		if imbalanced && (len(p.Members) == minSize || len(p.Members) == maxSize) {
			warnings = append(warnings, models.Warning{
				PatrolID: p.ID,
				Type:     models.WarningSizeImbalance,
				Message: fmt.Sprintf("patrol %d has %d members while patrol sizes range from %d to %d",
					p.TargetNumber, len(p.Members), minSize, maxSize),
				Severity: models.SeverityInfo,
			})
		}
	}
	return warnings
}

func appendPatrolWarnings(warnings []models.Warning, p *models.Patrol, index models.ParticipantIndex) []models.Warning {
	if len(p.JudgeIDs) == models.MaxJudges {
		if club, same := sameJudgeClub(p, index); same {
			warnings = append(warnings, models.Warning{
				PatrolID: p.ID,
				Type:     models.WarningSameClubJudges,
				Message:  fmt.Sprintf("both judges of patrol %d belong to %s", p.TargetNumber, club),
				Severity: models.SeverityWarning,
			})
		}
	}

	if len(p.JudgeIDs) < models.MaxJudges {
		warnings = append(warnings, models.Warning{
			PatrolID: p.ID,
			Type:     models.WarningMissingJudges,
			Message: fmt.Sprintf("patrol %d has %d of %d judges assigned",
				p.TargetNumber, len(p.JudgeIDs), models.MaxJudges),
			Severity: models.SeverityError,
		})
	}

	if p.LeaderID.IsNil() {
		warnings = append(warnings, models.Warning{
			PatrolID: p.ID,
			Type:     models.WarningMissingLeader,
			Message:  fmt.Sprintf("patrol %d has no leader assigned", p.TargetNumber),
			Severity: models.SeverityError,
		})
	}

	if distinctValues(p, index, func(p models.Participant) string { return p.Division }) > 1 {
		warnings = append(warnings, models.Warning{
			PatrolID: p.ID,
			Type:     models.WarningMixedDivisions,
			Message:  fmt.Sprintf("patrol %d mixes divisions", p.TargetNumber),
			Severity: models.SeverityInfo,
		})
	}

	if distinctValues(p, index, func(p models.Participant) string { return p.Gender }) > 1 {
		warnings = append(warnings, models.Warning{
			PatrolID: p.ID,
			Type:     models.WarningMixedGenders,
			Message:  fmt.Sprintf("patrol %d mixes genders", p.TargetNumber),
			Severity: models.SeverityInfo,
		})
	}

	return warnings
}

// sameJudgeClub reports whether all assigned judges share one club. Only
// meaningful when both judge slots are filled.
func sameJudgeClub(p *models.Patrol, index models.ParticipantIndex) (string, bool) {
	club := ""
	for _, jid := range p.JudgeIDs {
		judge, ok := index[jid]
		if !ok {
			return "", false
		}
		if club == "" {
			club = judge.Club
			continue
		}
		if judge.Club != club {
			return "", false
		}
	}
	return club, club != ""
}

func distinctValues(p *models.Patrol, index models.ParticipantIndex, attr func(models.Participant) string) int {
	seen := make(map[string]struct{}, len(p.Members))
	for _, m := range p.Members {
		if participant, ok := index[m]; ok {
			seen[attr(participant)] = struct{}{}
		}
	}
	return len(seen)
}

func sizeSpread(patrols []*models.Patrol) (minSize, maxSize int) {
	if len(patrols) == 0 {
		return 0, 0
	}
	minSize, maxSize = len(patrols[0].Members), len(patrols[0].Members)
	for _, p := range patrols[1:] {
		if n := len(p.Members); n < minSize {
			minSize = n
		} else if n > maxSize {
			maxSize = n
		}
	}
	return minSize, maxSize
}

// orderedPatrols returns the patrols in display order without mutating the
// roster's own slice.
func orderedPatrols(roster *models.Roster) []*models.Patrol {
	view := models.Roster{Patrols: append([]*models.Patrol(nil), roster.Patrols...)}
	view.SortPatrols()
	return view.Patrols
}
