package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/store/generator"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/platform/sentinel"
	"patrolboard/pkg/testutil"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "patrolboard.db"), generator.Snake{TargetSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRoster(tournamentID id.TournamentID) *models.Roster {
	roster := &models.Roster{
		TournamentID: tournamentID,
		Participants: models.ParticipantIndex{},
	}
	patrol := &models.Patrol{ID: id.PatrolID(uuid.New()), TargetNumber: 1}
	for i, name := range []string{"Alva", "Bram", "Cleo", "Dara"} {
		pid := id.ParticipantID(uuid.New())
		club := "Club X"
		if i%2 == 1 {
			club = "Club Y"
		}
		roster.Participants[pid] = models.Participant{
			ID: pid, Name: name, Club: club, Division: "senior", Gender: "f",
		}
		patrol.AppendMember(pid)
	}
	patrol.SetLeader(patrol.Members[0])
	patrol.AddJudge(patrol.Members[1])
	roster.Patrols = []*models.Patrol{patrol}
	return roster
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	tournamentID := id.TournamentID(uuid.New())
	roster := sampleRoster(tournamentID)

	require.NoError(t, store.Save(ctx, tournamentID, roster))

	loaded, err := store.Load(ctx, tournamentID)
	require.NoError(t, err)
	require.NoError(t, loaded.CheckInvariants())
	assert.Equal(t, roster.Patrols[0].Members, loaded.Patrols[0].Members)
	assert.Equal(t, roster.Patrols[0].LeaderID, loaded.Patrols[0].LeaderID)
	assert.Equal(t, roster.Patrols[0].JudgeIDs, loaded.Patrols[0].JudgeIDs)
	assert.Equal(t, roster.Participants, loaded.Participants)
}

func TestSQLiteStoreLoadUnknown(t *testing.T) {
	store := newStore(t)
	_, err := store.Load(context.Background(), id.TournamentID(uuid.New()))
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestSQLiteStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	tournamentID := id.TournamentID(uuid.New())
	roster := sampleRoster(tournamentID)

	testutil.Given(t, "a saved roster with a leader", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, tournamentID, roster))
	})
	testutil.When(t, "the leader is cleared and the roster saved again", func(t *testing.T) {
		roster.Patrols[0].ClearRoles(roster.Patrols[0].LeaderID)
		require.NoError(t, store.Save(ctx, tournamentID, roster))
	})
	testutil.Then(t, "the reloaded roster has no leader", func(t *testing.T) {
		loaded, err := store.Load(ctx, tournamentID)
		require.NoError(t, err)
		assert.True(t, loaded.Patrols[0].LeaderID.IsNil())
	})
}

func TestSQLiteStoreRegenerate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	tournamentID := id.TournamentID(uuid.New())
	require.NoError(t, store.Save(ctx, tournamentID, sampleRoster(tournamentID)))

	regenerated, err := store.Regenerate(ctx, tournamentID)
	require.NoError(t, err)
	require.NoError(t, regenerated.CheckInvariants())

	loaded, err := store.Load(ctx, tournamentID)
	require.NoError(t, err)
	assert.Equal(t, regenerated.Patrols[0].ID, loaded.Patrols[0].ID)

	_, err = store.Regenerate(ctx, id.TournamentID(uuid.New()))
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
