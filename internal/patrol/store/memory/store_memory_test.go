package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/store/generator"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store        *Store
	tournamentID id.TournamentID
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewStore(generator.Snake{TargetSize: 4})
	s.tournamentID = id.TournamentID(uuid.New())
}

func (s *MemoryStoreSuite) seedRoster() *models.Roster {
	roster := &models.Roster{
		TournamentID: s.tournamentID,
		Participants: models.ParticipantIndex{},
	}
	patrol := &models.Patrol{ID: id.PatrolID(uuid.New()), TargetNumber: 1}
	for _, name := range []string{"Alva", "Bram", "Cleo", "Dara"} {
		pid := id.ParticipantID(uuid.New())
		roster.Participants[pid] = models.Participant{
			ID: pid, Name: name, Club: "Club X", Division: "senior", Gender: "f",
		}
		patrol.AppendMember(pid)
	}
	roster.Patrols = []*models.Patrol{patrol}
	s.store.Seed(roster)
	return roster
}

func (s *MemoryStoreSuite) TestLoad() {
	ctx := context.Background()

	s.Run("unknown tournament", func() {
		_, err := s.store.Load(ctx, id.TournamentID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns an independent copy", func() {
		s.seedRoster()
		first, err := s.store.Load(ctx, s.tournamentID)
		s.Require().NoError(err)

		first.Patrols[0].Members = nil

		second, err := s.store.Load(ctx, s.tournamentID)
		s.Require().NoError(err)
		s.Len(second.Patrols[0].Members, 4)
	})
}

func (s *MemoryStoreSuite) TestSave() {
	ctx := context.Background()
	roster := s.seedRoster()

	roster.Patrols[0].SetLeader(roster.Patrols[0].Members[0])
	s.Require().NoError(s.store.Save(ctx, s.tournamentID, roster))

	loaded, err := s.store.Load(ctx, s.tournamentID)
	s.Require().NoError(err)
	s.Equal(roster.Patrols[0].LeaderID, loaded.Patrols[0].LeaderID)

	// Saving detaches from the caller's copy.
	roster.Patrols[0].Members = nil
	loaded, err = s.store.Load(ctx, s.tournamentID)
	s.Require().NoError(err)
	s.Len(loaded.Patrols[0].Members, 4)
}

func (s *MemoryStoreSuite) TestRegenerate() {
	ctx := context.Background()

	s.Run("unknown tournament", func() {
		_, err := s.store.Regenerate(ctx, id.TournamentID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reassigns the registered participants and persists", func() {
		seeded := s.seedRoster()

		regenerated, err := s.store.Regenerate(ctx, s.tournamentID)
		s.Require().NoError(err)
		s.Len(regenerated.Participants, len(seeded.Participants))
		s.Require().NoError(regenerated.CheckInvariants())

		loaded, err := s.store.Load(ctx, s.tournamentID)
		s.Require().NoError(err)
		s.Equal(regenerated.Patrols[0].ID, loaded.Patrols[0].ID)
	})
}
