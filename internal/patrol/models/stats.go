package models

// PatrolStats is a quality snapshot over the whole roster. Refreshed on
// load/regenerate; callers needing fresh numbers after edits recompute
// explicitly. Scores are percentages in [0,100].
type PatrolStats struct {
	TotalParticipants int               `json:"total_participants"`
	AveragePatrolSize float64           `json:"average_patrol_size"`
	ClubDiversity     float64           `json:"club_diversity_score"`
	Homogeneity       HomogeneityScores `json:"homogeneity_scores"`
}

// HomogeneityScores measure how uniform patrols are along one attribute:
// 100 means every patrol is single-division (or single-gender).
type HomogeneityScores struct {
	Division float64 `json:"division"`
	Gender   float64 `json:"gender"`
}
