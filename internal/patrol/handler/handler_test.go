package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolboard/internal/audit"
	auditmemory "patrolboard/internal/audit/store/memory"
	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/service"
	"patrolboard/internal/patrol/store/generator"
	"patrolboard/internal/patrol/store/memory"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/testutil"
)

type testEnv struct {
	router       *chi.Mux
	service      *service.RosterService
	auditStore   *auditmemory.Store
	tournamentID id.TournamentID
	patrolA      *models.Patrol
	patrolB      *models.Patrol
	movable      id.ParticipantID
}

// newTestEnv wires the handler to a real service over the in-memory
// gateway: one four-member patrol and one three-member patrol.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tournamentID := id.TournamentID(uuid.New())
	roster := &models.Roster{
		TournamentID: tournamentID,
		Participants: models.ParticipantIndex{},
	}
	a := &models.Patrol{ID: id.PatrolID(uuid.New()), TargetNumber: 1}
	b := &models.Patrol{ID: id.PatrolID(uuid.New()), TargetNumber: 2}
	add := func(p *models.Patrol, name, club string) id.ParticipantID {
		pid := id.ParticipantID(uuid.New())
		roster.Participants[pid] = models.Participant{
			ID: pid, Name: name, Club: club, Division: "senior", Gender: "f",
		}
		p.AppendMember(pid)
		return pid
	}
	movable := add(a, "Alva", "Club X")
	add(a, "Bram", "Club X")
	add(a, "Cleo", "Club Y")
	add(a, "Dara", "Club Y")
	add(b, "Ezra", "Club Z")
	add(b, "Finn", "Club Z")
	add(b, "Gwen", "Club Z")
	roster.Patrols = []*models.Patrol{a, b}

	store := memory.NewStore(generator.Snake{TargetSize: 4})
	store.Seed(roster)

	auditStore := auditmemory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store,
		service.WithLogger(logger),
		service.WithAuditPublisher(audit.NewPublisher(auditStore)),
	)
	h := New(svc, logger)
	router := chi.NewRouter()
	h.Register(router)

	return &testEnv{
		router:       router,
		service:      svc,
		auditStore:   auditStore,
		tournamentID: tournamentID,
		patrolA:      a,
		patrolB:      b,
		movable:      movable,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, path, body)
	} else {
		req = testutil.NewRequest(t, method, path)
	}
	return testutil.DoRequest(e.router, req)
}

func (e *testEnv) load(t *testing.T) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/tournaments/"+e.tournamentID.String()+"/roster/load", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleLoad(t *testing.T) {
	t.Run("returns the loaded snapshot", func(t *testing.T) {
		e := newTestEnv(t)
		w := e.do(t, http.MethodPost, "/tournaments/"+e.tournamentID.String()+"/roster/load", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["dirty"])
		roster := body["roster"].(map[string]any)
		assert.Len(t, roster["patrols"], 2)
	})

	t.Run("malformed tournament id", func(t *testing.T) {
		e := newTestEnv(t)
		w := e.do(t, http.MethodPost, "/tournaments/not-a-uuid/roster/load", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		e := newTestEnv(t)
		w := e.do(t, http.MethodPost, "/tournaments/"+uuid.NewString()+"/roster/load", nil)
		testutil.AssertStatusAndError(t, w, http.StatusNotFound, "not_found")
	})
}

func TestHandleSnapshot(t *testing.T) {
	t.Run("without a loaded roster", func(t *testing.T) {
		e := newTestEnv(t)
		w := e.do(t, http.MethodGet, "/tournaments/"+e.tournamentID.String()+"/roster", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("path names a different tournament", func(t *testing.T) {
		e := newTestEnv(t)
		e.load(t)
		w := e.do(t, http.MethodGet, "/tournaments/"+uuid.NewString()+"/roster", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("returns patrols and participants", func(t *testing.T) {
		e := newTestEnv(t)
		e.load(t)
		w := e.do(t, http.MethodGet, "/tournaments/"+e.tournamentID.String()+"/roster", nil)

		require.Equal(t, http.StatusOK, w.Code)
		roster := decode(t, w)["roster"].(map[string]any)
		assert.Len(t, roster["participants"], 7)
	})
}

func TestHandleMove(t *testing.T) {
	e := newTestEnv(t)
	e.load(t)
	base := "/tournaments/" + e.tournamentID.String() + "/roster/moves"

	t.Run("accepted move", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base, map[string]string{
			"member_id":        e.movable.String(),
			"source_patrol_id": e.patrolA.ID.String(),
			"target_patrol_id": e.patrolB.ID.String(),
		})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["accepted"])
		assert.True(t, e.service.Dirty())
	})

	t.Run("rejection is 200 with accepted=false", func(t *testing.T) {
		// Patrol A is now at the minimum size.
		fromSmall := e.patrolA.Members[1]
		w := e.do(t, http.MethodPost, base, map[string]string{
			"member_id":        fromSmall.String(),
			"source_patrol_id": e.patrolA.ID.String(),
			"target_patrol_id": e.patrolB.ID.String(),
		})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["accepted"])
		assert.NotEmpty(t, body["reason"])
	})

	t.Run("unknown patrol is a conflict", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base, map[string]string{
			"member_id":        e.movable.String(),
			"source_patrol_id": e.patrolB.ID.String(),
			"target_patrol_id": uuid.NewString(),
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown body field", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base, map[string]string{"member": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed member id", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base, map[string]string{
			"member_id":        "nope",
			"source_patrol_id": e.patrolA.ID.String(),
			"target_patrol_id": e.patrolB.ID.String(),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleRoleChange(t *testing.T) {
	e := newTestEnv(t)
	e.load(t)
	base := "/tournaments/" + e.tournamentID.String() + "/roster/roles"

	t.Run("leader assignment", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base, map[string]string{
			"patrol_id": e.patrolA.ID.String(),
			"member_id": e.movable.String(),
			"role":      "leader",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, e.service.Dirty())

		snap, err := e.service.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, e.movable, snap.Roster.PatrolByID(e.patrolA.ID).LeaderID)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base, map[string]string{
			"patrol_id": e.patrolA.ID.String(),
			"member_id": e.movable.String(),
			"role":      "captain",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleSaveAndRegenerate(t *testing.T) {
	e := newTestEnv(t)
	e.load(t)
	base := "/tournaments/" + e.tournamentID.String() + "/roster"

	w := e.do(t, http.MethodPost, base+"/roles", map[string]string{
		"patrol_id": e.patrolA.ID.String(),
		"member_id": e.movable.String(),
		"role":      "leader",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, e.service.Dirty())

	t.Run("save clears dirty", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base+"/save", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["saved"])
		assert.False(t, e.service.Dirty())
	})

	t.Run("regenerate requires confirmation", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base+"/regenerate", map[string]bool{"confirm": false})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("confirmed regenerate replaces the roster", func(t *testing.T) {
		w := e.do(t, http.MethodPost, base+"/regenerate", map[string]bool{"confirm": true})
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["dirty"])

		snap, err := e.service.Snapshot()
		require.NoError(t, err)
		assert.Nil(t, snap.Roster.PatrolByID(e.patrolA.ID), "old patrol ids must be gone")
	})
}

func TestHandleWarningsAndStats(t *testing.T) {
	e := newTestEnv(t)
	e.load(t)
	base := "/tournaments/" + e.tournamentID.String() + "/roster"

	t.Run("warnings", func(t *testing.T) {
		w := e.do(t, http.MethodGet, base+"/warnings", nil)
		require.Equal(t, http.StatusOK, w.Code)
		warnings := decode(t, w)["warnings"].([]any)
		assert.NotEmpty(t, warnings, "leaderless patrols must warn")
	})

	t.Run("stats", func(t *testing.T) {
		w := e.do(t, http.MethodGet, base+"/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(7), body["total_participants"])
	})
}

func TestHandleReport(t *testing.T) {
	e := newTestEnv(t)
	e.load(t)

	w := e.do(t, http.MethodPost, "/tournaments/"+e.tournamentID.String()+"/roster/roles", map[string]string{
		"patrol_id": e.patrolA.ID.String(),
		"member_id": e.movable.String(),
		"role":      "leader",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/tournaments/"+e.tournamentID.String()+"/roster/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rep report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	require.Len(t, rep.Patrols, 2)
	assert.Equal(t, 1, rep.Patrols[0].TargetNumber)
	require.Len(t, rep.Patrols[0].Members, 4)
	assert.Equal(t, "Alva", rep.Patrols[0].Members[0].Name)
	assert.True(t, rep.Patrols[0].Members[0].IsLeader)
}

func TestAuditTrail(t *testing.T) {
	e := newTestEnv(t)
	e.load(t)

	frozen := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	req := testutil.NewJSONRequest(t, http.MethodPost,
		"/tournaments/"+e.tournamentID.String()+"/roster/moves", map[string]string{
			"member_id":        e.movable.String(),
			"source_patrol_id": e.patrolA.ID.String(),
			"target_patrol_id": e.patrolB.ID.String(),
		})
	req = testutil.WithRequestID(req, "req-123")
	req = testutil.WithClientIP(req, "10.0.0.9")
	req = testutil.WithFrozenTime(req, frozen)
	w := testutil.DoRequest(e.router, req)
	require.Equal(t, http.StatusOK, w.Code)

	events, err := e.auditStore.ListByTournament(context.Background(), e.tournamentID.String())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, audit.ActionRosterLoaded, events[0].Action)

	moved := events[1]
	assert.Equal(t, audit.ActionMemberMoved, moved.Action)
	assert.Equal(t, e.patrolB.ID.String(), moved.PatrolID)
	assert.Equal(t, e.movable.String(), moved.MemberID)
	assert.Equal(t, "req-123", moved.RequestID)
	assert.Equal(t, "10.0.0.9", moved.ActorIP)
	assert.True(t, moved.Timestamp.Equal(frozen))
}
