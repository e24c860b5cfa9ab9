package validate

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolboard/internal/patrol/models"
	id "patrolboard/pkg/domain"
)

type fixture struct {
	roster *models.Roster
}

func newFixture() *fixture {
	return &fixture{roster: &models.Roster{
		TournamentID: id.TournamentID(uuid.New()),
		Participants: models.ParticipantIndex{},
	}}
}

func (f *fixture) addPatrol(target int) *models.Patrol {
	p := &models.Patrol{ID: id.PatrolID(uuid.New()), TargetNumber: target}
	f.roster.Patrols = append(f.roster.Patrols, p)
	return p
}

func (f *fixture) addMember(p *models.Patrol, name, club, division, gender string) id.ParticipantID {
	pid := id.ParticipantID(uuid.New())
	f.roster.Participants[pid] = models.Participant{
		ID: pid, Name: name, Club: club, Division: division, Gender: gender,
	}
	p.AppendMember(pid)
	return pid
}

func move(m id.ParticipantID, from, to *models.Patrol) models.MoveRequest {
	return models.MoveRequest{MemberID: m, SourcePatrol: from.ID, TargetPatrol: to.ID}
}

func TestCanMoveHardConstraints(t *testing.T) {
	t.Run("rejects unknown source patrol", func(t *testing.T) {
		f := newFixture()
		target := f.addPatrol(2)
		m := f.addMember(target, "Alva", "Club X", "senior", "f")
		d := CanMove(models.MoveRequest{
			MemberID: m, SourcePatrol: id.PatrolID(uuid.New()), TargetPatrol: target.ID,
		}, f.roster)
		assert.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "does not exist")
	})

	t.Run("rejects unknown target patrol", func(t *testing.T) {
		f := newFixture()
		source := f.addPatrol(1)
		m := f.addMember(source, "Alva", "Club X", "senior", "f")
		d := CanMove(models.MoveRequest{
			MemberID: m, SourcePatrol: source.ID, TargetPatrol: id.PatrolID(uuid.New()),
		}, f.roster)
		assert.False(t, d.Allowed)
	})

	t.Run("rejects unregistered participant", func(t *testing.T) {
		f := newFixture()
		source, target := f.addPatrol(1), f.addPatrol(2)
		d := CanMove(models.MoveRequest{
			MemberID: id.ParticipantID(uuid.New()), SourcePatrol: source.ID, TargetPatrol: target.ID,
		}, f.roster)
		assert.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "not registered")
	})

	t.Run("rejects member not in source patrol", func(t *testing.T) {
		f := newFixture()
		source, target := f.addPatrol(1), f.addPatrol(2)
		m := f.addMember(target, "Alva", "Club X", "senior", "f")
		d := CanMove(move(m, source, target), f.roster)
		assert.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "not a member")
	})

	// Scenario A from the product brief: a three-member patrol may not shrink.
	t.Run("rejects move that would shrink source below minimum", func(t *testing.T) {
		f := newFixture()
		source, target := f.addPatrol(1), f.addPatrol(2)
		m := f.addMember(source, "Alva", "Club X", "senior", "f")
		f.addMember(source, "Bo", "Club Y", "senior", "m")
		f.addMember(source, "Cleo", "Club Z", "senior", "f")

		d := CanMove(move(m, source, target), f.roster)
		require.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "minimum size")
		assert.Len(t, source.Members, 3, "validation must not mutate the roster")
	})

	t.Run("allows move from a four-member patrol", func(t *testing.T) {
		f := newFixture()
		source, target := f.addPatrol(1), f.addPatrol(2)
		m := f.addMember(source, "Alva", "Club X", "senior", "f")
		f.addMember(source, "Bo", "Club Y", "senior", "f")
		f.addMember(source, "Cleo", "Club Z", "senior", "f")
		f.addMember(source, "Didrik", "Club W", "senior", "f")

		d := CanMove(move(m, source, target), f.roster)
		assert.True(t, d.Allowed)
		assert.Empty(t, d.Reason)
	})
}

func TestCanMoveAdvisories(t *testing.T) {
	setup := func() (*fixture, *models.Patrol, *models.Patrol, id.ParticipantID) {
		f := newFixture()
		source, target := f.addPatrol(1), f.addPatrol(2)
		mover := f.addMember(source, "Alva", "Club X", "junior", "f")
		f.addMember(source, "Bo", "Club X", "junior", "f")
		f.addMember(source, "Cleo", "Club X", "junior", "f")
		f.addMember(source, "Didrik", "Club X", "junior", "f")
		return f, source, target, mover
	}

	t.Run("no advisories when mover matches dominant values", func(t *testing.T) {
		f, source, target, mover := setup()
		f.addMember(target, "Erik", "Club Y", "junior", "f")
		f.addMember(target, "Freja", "Club Y", "junior", "f")

		d := CanMove(move(mover, source, target), f.roster)
		require.True(t, d.Allowed)
		assert.Empty(t, d.Advisories)
	})

	t.Run("division mismatch is advisory only", func(t *testing.T) {
		f, source, target, mover := setup()
		f.addMember(target, "Erik", "Club Y", "senior", "f")
		f.addMember(target, "Freja", "Club Y", "senior", "f")

		d := CanMove(move(mover, source, target), f.roster)
		require.True(t, d.Allowed, "soft constraints never block")
		require.Len(t, d.Advisories, 1)
		assert.Contains(t, d.Advisories[0], "junior")
		assert.Contains(t, d.Advisories[0], "senior")
	})

	t.Run("gender and division mismatches stack", func(t *testing.T) {
		f, source, target, mover := setup()
		f.addMember(target, "Erik", "Club Y", "senior", "m")
		f.addMember(target, "Gustav", "Club Y", "senior", "m")

		d := CanMove(move(mover, source, target), f.roster)
		require.True(t, d.Allowed)
		assert.Len(t, d.Advisories, 2)
	})

	t.Run("dominant ties break toward first-encountered value", func(t *testing.T) {
		f, source, target, mover := setup()
		// One senior then one junior: tie, senior encountered first.
		f.addMember(target, "Erik", "Club Y", "senior", "f")
		f.addMember(target, "Freja", "Club Y", "junior", "f")

		d := CanMove(move(mover, source, target), f.roster)
		require.True(t, d.Allowed)
		require.Len(t, d.Advisories, 1)
		assert.True(t, strings.Contains(d.Advisories[0], `"senior"`),
			"tie must resolve to first-seen value, got %q", d.Advisories[0])
	})

	t.Run("empty target patrol yields no advisories", func(t *testing.T) {
		f, source, target, mover := setup()
		d := CanMove(move(mover, source, target), f.roster)
		require.True(t, d.Allowed)
		assert.Empty(t, d.Advisories)
	})
}

func TestIsReferential(t *testing.T) {
	f := newFixture()
	source, target := f.addPatrol(1), f.addPatrol(2)
	m := f.addMember(source, "Alva", "Club X", "senior", "f")

	assert.False(t, IsReferential(move(m, source, target), f.roster))
	assert.True(t, IsReferential(models.MoveRequest{
		MemberID: m, SourcePatrol: id.PatrolID(uuid.New()), TargetPatrol: target.ID,
	}, f.roster))
	assert.True(t, IsReferential(models.MoveRequest{
		MemberID: id.ParticipantID(uuid.New()), SourcePatrol: source.ID, TargetPatrol: target.ID,
	}, f.roster))
}
