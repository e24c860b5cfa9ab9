// Package postgres persists audit events through database/sql. The driver
// is registered by the binary (lib/pq).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"patrolboard/internal/audit"
	txcontext "patrolboard/pkg/platform/tx"
)

// Store implements audit.Store on a Postgres audit_events table. Append
// joins a caller-opened transaction when one is present in the context, so
// audit rows commit atomically with the roster save they describe.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, occurred_at, action, tournament_id, patrol_id, member_id,
			actor_ip, request_id, detail
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		ts,
		string(event.Action),
		event.TournamentID,
		nullable(event.PatrolID),
		nullable(event.MemberID),
		nullable(event.ActorIP),
		nullable(event.RequestID),
		nullable(event.Detail),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByTournament(ctx context.Context, tournamentID string) ([]audit.Event, error) {
	query := `
		SELECT occurred_at, action, tournament_id,
		       COALESCE(patrol_id, ''), COALESCE(member_id, ''),
		       COALESCE(actor_ip, ''), COALESCE(request_id, ''), COALESCE(detail, '')
		FROM audit_events
		WHERE tournament_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(&e.Timestamp, &action, &e.TournamentID,
			&e.PatrolID, &e.MemberID, &e.ActorIP, &e.RequestID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
