// Package generator produces fresh patrol assignments from a tournament's
// registered participants.
package generator

import (
	"cmp"
	"slices"

	"github.com/google/uuid"

	"patrolboard/internal/patrol/models"
	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
)

// Generator builds a complete roster from the participant pool.
type Generator interface {
	Generate(tournamentID id.TournamentID, participants models.ParticipantIndex) (*models.Roster, error)
}

const defaultTargetSize = 6

// Snake assigns participants to patrols with a snake draft over a
// club-sorted pool: clubmates land far apart, and patrol sizes differ by at
// most one. Given the same pool it always deals the same way; only the
// patrol ids are fresh.
type Snake struct {
	// TargetSize is the preferred patrol size. Values below the minimum
	// patrol size fall back to the default.
	TargetSize int
}

func (g Snake) Generate(tournamentID id.TournamentID, participants models.ParticipantIndex) (*models.Roster, error) {
	if len(participants) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot generate patrols without participants")
	}

	size := g.TargetSize
	if size < models.MinPatrolSize {
		size = defaultTargetSize
	}
	count := (len(participants) + size - 1) / size
	// Shrink until every patrol can reach the minimum size.
	for count > 1 && len(participants)/count < models.MinPatrolSize {
		count--
	}

	pool := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		pool = append(pool, p)
	}
	slices.SortFunc(pool, func(a, b models.Participant) int {
		if c := cmp.Compare(a.Club, b.Club); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Division, b.Division); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	patrols := make([]*models.Patrol, count)
	for i := range patrols {
		patrols[i] = &models.Patrol{ID: id.PatrolID(uuid.New()), TargetNumber: i + 1}
	}
	for i, p := range pool {
		row, col := i/count, i%count
		if row%2 == 1 {
			col = count - 1 - col
		}
		patrols[col].AppendMember(p.ID)
	}

	roster := &models.Roster{
		TournamentID: tournamentID,
		Patrols:      patrols,
		Participants: participants.Clone(),
	}
	if err := roster.CheckInvariants(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "generated roster is inconsistent")
	}
	return roster, nil
}
