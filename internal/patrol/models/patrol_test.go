package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
)

func newMember() id.ParticipantID { return id.ParticipantID(uuid.New()) }

func newPatrolWithMembers(t *testing.T, target int, members ...id.ParticipantID) *Patrol {
	t.Helper()
	p, err := NewPatrol(id.PatrolID(uuid.New()), target)
	require.NoError(t, err)
	for _, m := range members {
		p.AppendMember(m)
	}
	return p
}

func TestNewPatrolInvariants(t *testing.T) {
	t.Run("rejects nil id", func(t *testing.T) {
		_, err := NewPatrol(id.PatrolID{}, 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects non-positive target number", func(t *testing.T) {
		_, err := NewPatrol(id.PatrolID(uuid.New()), 0)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestRemoveMemberStripsRoles(t *testing.T) {
	leader, judge, other := newMember(), newMember(), newMember()
	p := newPatrolWithMembers(t, 1, leader, judge, other)
	p.SetLeader(leader)
	p.AddJudge(judge)

	p.RemoveMember(leader)
	assert.True(t, p.LeaderID.IsNil(), "leader flag must clear when leader leaves")
	assert.False(t, p.HasMember(leader))

	p.RemoveMember(judge)
	assert.Empty(t, p.JudgeIDs, "judge slot must clear when judge leaves")

	require.NoError(t, p.CheckInvariants())
}

func TestAddJudgeIdempotentAndBounded(t *testing.T) {
	a, b, c := newMember(), newMember(), newMember()
	p := newPatrolWithMembers(t, 1, a, b, c)

	p.AddJudge(a)
	p.AddJudge(a) // duplicate: no-op
	assert.Len(t, p.JudgeIDs, 1)

	p.AddJudge(b)
	p.AddJudge(c) // slots full: no-op
	assert.Equal(t, []id.ParticipantID{a, b}, p.JudgeIDs)
	require.NoError(t, p.CheckInvariants())
}

func TestClearRolesKeepsMembership(t *testing.T) {
	a := newMember()
	p := newPatrolWithMembers(t, 1, a)
	p.SetLeader(a)
	p.AddJudge(a)

	p.ClearRoles(a)
	assert.True(t, p.LeaderID.IsNil())
	assert.Empty(t, p.JudgeIDs)
	assert.True(t, p.HasMember(a), "clearing roles must not remove membership")
}

func TestCloneIsIndependent(t *testing.T) {
	a, b := newMember(), newMember()
	p := newPatrolWithMembers(t, 1, a, b)
	p.AddJudge(a)

	cp := p.Clone()
	cp.RemoveMember(a)

	assert.True(t, p.HasMember(a), "mutating the clone must not touch the original")
	assert.Len(t, p.JudgeIDs, 1)
}

func TestCheckInvariantsDetectsViolations(t *testing.T) {
	a := newMember()

	t.Run("duplicate member", func(t *testing.T) {
		p := newPatrolWithMembers(t, 1, a, a)
		require.Error(t, p.CheckInvariants())
	})

	t.Run("leader outside membership", func(t *testing.T) {
		p := newPatrolWithMembers(t, 1, a)
		p.SetLeader(newMember())
		require.Error(t, p.CheckInvariants())
	})

	t.Run("judge outside membership", func(t *testing.T) {
		p := newPatrolWithMembers(t, 1, a)
		p.JudgeIDs = append(p.JudgeIDs, newMember())
		require.Error(t, p.CheckInvariants())
	})
}

func TestRosterDisjointness(t *testing.T) {
	shared := newMember()
	p1 := newPatrolWithMembers(t, 1, shared)
	p2 := newPatrolWithMembers(t, 2, shared)

	roster := &Roster{
		TournamentID: id.TournamentID(uuid.New()),
		Patrols:      []*Patrol{p1, p2},
		Participants: ParticipantIndex{shared: {ID: shared, Name: "A", Club: "C", Division: "open", Gender: "f"}},
	}
	err := roster.CheckInvariants()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestRosterSortPatrols(t *testing.T) {
	p3 := newPatrolWithMembers(t, 3)
	p1 := newPatrolWithMembers(t, 1)
	p2 := newPatrolWithMembers(t, 2)
	roster := &Roster{Patrols: []*Patrol{p3, p1, p2}}
	roster.SortPatrols()
	assert.Equal(t, []int{1, 2, 3}, []int{
		roster.Patrols[0].TargetNumber,
		roster.Patrols[1].TargetNumber,
		roster.Patrols[2].TargetNumber,
	})
}
