// Package postgres persists tournament rosters in PostgreSQL. Patrol
// membership order is significant and is stored in an explicit position
// column; Save replaces the tournament's rows wholesale inside one
// transaction, mirroring the whole-roster semantics of the gateway
// contract.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/store/generator"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/platform/sentinel"
)

type Store struct {
	pool      *pgxpool.Pool
	generator generator.Generator
}

func NewStore(pool *pgxpool.Pool, gen generator.Generator) *Store {
	return &Store{pool: pool, generator: gen}
}

// EnsureSchema creates the roster tables if they do not exist. Applied at
// startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS roster_participants (
			tournament_id UUID NOT NULL,
			id UUID NOT NULL,
			name TEXT NOT NULL,
			club TEXT NOT NULL,
			division TEXT NOT NULL,
			gender TEXT NOT NULL,
			PRIMARY KEY (tournament_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS roster_patrols (
			tournament_id UUID NOT NULL,
			id UUID NOT NULL,
			target_number INT NOT NULL,
			leader_id UUID,
			judge_ids UUID[] NOT NULL DEFAULT '{}',
			PRIMARY KEY (tournament_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS roster_patrol_members (
			tournament_id UUID NOT NULL,
			patrol_id UUID NOT NULL,
			participant_id UUID NOT NULL,
			position INT NOT NULL,
			PRIMARY KEY (tournament_id, patrol_id, participant_id)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id UUID PRIMARY KEY,
			occurred_at TIMESTAMPTZ NOT NULL,
			action TEXT NOT NULL,
			tournament_id TEXT NOT NULL,
			patrol_id TEXT,
			member_id TEXT,
			actor_ip TEXT,
			request_id TEXT,
			detail TEXT
		)`,
	}
	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure roster schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Load(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error) {
	roster := &models.Roster{
		TournamentID: tournamentID,
		Participants: models.ParticipantIndex{},
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, club, division, gender
		 FROM roster_participants WHERE tournament_id = $1`,
		uuid.UUID(tournamentID))
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	for rows.Next() {
		var pid uuid.UUID
		var p models.Participant
		if err := rows.Scan(&pid, &p.Name, &p.Club, &p.Division, &p.Gender); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.ID = id.ParticipantID(pid)
		roster.Participants[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, target_number, leader_id, judge_ids
		 FROM roster_patrols WHERE tournament_id = $1
		 ORDER BY target_number, id`,
		uuid.UUID(tournamentID))
	if err != nil {
		return nil, fmt.Errorf("load patrols: %w", err)
	}
	for rows.Next() {
		var pid uuid.UUID
		var leaderID *uuid.UUID
		var judgeIDs []uuid.UUID
		p := &models.Patrol{}
		if err := rows.Scan(&pid, &p.TargetNumber, &leaderID, &judgeIDs); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan patrol: %w", err)
		}
		p.ID = id.PatrolID(pid)
		if leaderID != nil {
			p.LeaderID = id.ParticipantID(*leaderID)
		}
		for _, j := range judgeIDs {
			p.JudgeIDs = append(p.JudgeIDs, id.ParticipantID(j))
		}
		roster.Patrols = append(roster.Patrols, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patrols: %w", err)
	}
	if len(roster.Patrols) == 0 && len(roster.Participants) == 0 {
		return nil, sentinel.ErrNotFound
	}

	rows, err = s.pool.Query(ctx,
		`SELECT patrol_id, participant_id
		 FROM roster_patrol_members WHERE tournament_id = $1
		 ORDER BY patrol_id, position`,
		uuid.UUID(tournamentID))
	if err != nil {
		return nil, fmt.Errorf("load patrol members: %w", err)
	}
	members := map[id.PatrolID][]id.ParticipantID{}
	for rows.Next() {
		var patrolID, participantID uuid.UUID
		if err := rows.Scan(&patrolID, &participantID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan patrol member: %w", err)
		}
		members[id.PatrolID(patrolID)] = append(members[id.PatrolID(patrolID)], id.ParticipantID(participantID))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patrol members: %w", err)
	}
	for _, p := range roster.Patrols {
		p.Members = members[p.ID]
	}

	return roster, nil
}

func (s *Store) Save(ctx context.Context, tournamentID id.TournamentID, roster *models.Roster) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin roster save: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := saveTx(ctx, tx, tournamentID, roster); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit roster save: %w", err)
	}
	return nil
}

func saveTx(ctx context.Context, tx pgx.Tx, tournamentID id.TournamentID, roster *models.Roster) error {
	tid := uuid.UUID(tournamentID)
	for _, table := range []string{"roster_patrol_members", "roster_patrols", "roster_participants"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE tournament_id = $1", table), tid); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	participantRows := make([][]any, 0, len(roster.Participants))
	for _, p := range roster.Participants {
		participantRows = append(participantRows, []any{tid, uuid.UUID(p.ID), p.Name, p.Club, p.Division, p.Gender})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"roster_participants"},
		[]string{"tournament_id", "id", "name", "club", "division", "gender"},
		pgx.CopyFromRows(participantRows),
	); err != nil {
		return fmt.Errorf("insert participants: %w", err)
	}

	memberRows := make([][]any, 0, len(roster.Participants))
	for _, p := range roster.Patrols {
		var leaderID *uuid.UUID
		if !p.LeaderID.IsNil() {
			lid := uuid.UUID(p.LeaderID)
			leaderID = &lid
		}
		judgeIDs := make([]uuid.UUID, 0, len(p.JudgeIDs))
		for _, j := range p.JudgeIDs {
			judgeIDs = append(judgeIDs, uuid.UUID(j))
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO roster_patrols (tournament_id, id, target_number, leader_id, judge_ids)
			 VALUES ($1, $2, $3, $4, $5)`,
			tid, uuid.UUID(p.ID), p.TargetNumber, leaderID, judgeIDs,
		); err != nil {
			return fmt.Errorf("insert patrol: %w", err)
		}
		for pos, m := range p.Members {
			memberRows = append(memberRows, []any{tid, uuid.UUID(p.ID), uuid.UUID(m), pos})
		}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"roster_patrol_members"},
		[]string{"tournament_id", "patrol_id", "participant_id", "position"},
		pgx.CopyFromRows(memberRows),
	); err != nil {
		return fmt.Errorf("insert patrol members: %w", err)
	}
	return nil
}

// Regenerate reassigns the tournament's registered participants and
// persists the new layout.
func (s *Store) Regenerate(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error) {
	current, err := s.Load(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load roster for regeneration: %w", err)
	}
	roster, err := s.generator.Generate(tournamentID, current.Participants)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, tournamentID, roster); err != nil {
		return nil, err
	}
	return roster, nil
}
