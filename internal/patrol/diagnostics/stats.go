package diagnostics

import "patrolboard/internal/patrol/models"

// ComputeStats derives the aggregate quality snapshot from roster state.
//
// Per-patrol ratios (club diversity, division and gender homogeneity) are
// averaged over non-empty patrols only; a patrol with no members carries no
// signal about diversity, so it is excluded rather than counted as zero.
// With no patrols at all, every metric is zero.
func ComputeStats(roster *models.Roster) models.PatrolStats {
	stats := models.PatrolStats{TotalParticipants: len(roster.Participants)}
	if len(roster.Patrols) == 0 {
		return stats
	}
	stats.AveragePatrolSize = float64(stats.TotalParticipants) / float64(len(roster.Patrols))

	var clubSum, divisionSum, genderSum float64
	populated := 0
	for _, p := range roster.Patrols {
		if len(p.Members) == 0 {
			continue
		}
		populated++
		size := float64(len(p.Members))
		clubSum += float64(distinctValues(p, roster.Participants, clubOf)) / size
		divisionSum += float64(peakCount(p, roster.Participants, divisionOf)) / size
		genderSum += float64(peakCount(p, roster.Participants, genderOf)) / size
	}
	if populated == 0 {
		return stats
	}

	n := float64(populated)
	stats.ClubDiversity = 100 * clubSum / n
	stats.Homogeneity.Division = 100 * divisionSum / n
	stats.Homogeneity.Gender = 100 * genderSum / n
	return stats
}

func clubOf(p models.Participant) string     { return p.Club }
func divisionOf(p models.Participant) string { return p.Division }
func genderOf(p models.Participant) string   { return p.Gender }

// peakCount returns the occurrence count of the most frequent attribute
// value among the patrol's members.
func peakCount(p *models.Patrol, index models.ParticipantIndex, attr func(models.Participant) string) int {
	counts := make(map[string]int, len(p.Members))
	best := 0
	for _, m := range p.Members {
		participant, ok := index[m]
		if !ok {
			continue
		}
		counts[attr(participant)]++
		if counts[attr(participant)] > best {
			best = counts[attr(participant)]
		}
	}
	return best
}
