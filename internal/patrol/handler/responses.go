package handler

import (
	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/service"
)

type saveResponse struct {
	Saved bool `json:"saved"`
}

type warningsResponse struct {
	Warnings []models.Warning `json:"warnings"`
}

// report is the flat printable roster for range officials.
type report struct {
	TournamentID string         `json:"tournament_id"`
	Dirty        bool           `json:"dirty"`
	Patrols      []reportPatrol `json:"patrols"`
}

type reportPatrol struct {
	TargetNumber int            `json:"target_number"`
	Members      []reportMember `json:"members"`
}

type reportMember struct {
	Name     string `json:"name"`
	Club     string `json:"club"`
	Division string `json:"division"`
	IsLeader bool   `json:"is_leader,omitempty"`
	IsJudge  bool   `json:"is_judge,omitempty"`
}

func buildReport(snap service.Snapshot) report {
	roster := snap.Roster
	roster.SortPatrols()

	out := report{
		TournamentID: roster.TournamentID.String(),
		Dirty:        snap.Dirty,
		Patrols:      make([]reportPatrol, 0, len(roster.Patrols)),
	}
	for _, p := range roster.Patrols {
		rp := reportPatrol{
			TargetNumber: p.TargetNumber,
			Members:      make([]reportMember, 0, len(p.Members)),
		}
		for _, m := range p.Members {
			participant := roster.Participants[m]
			rp.Members = append(rp.Members, reportMember{
				Name:     participant.Name,
				Club:     participant.Club,
				Division: participant.Division,
				IsLeader: p.LeaderID == m,
				IsJudge:  p.HasJudge(m),
			})
		}
		out.Patrols = append(out.Patrols, rp)
	}
	return out
}
