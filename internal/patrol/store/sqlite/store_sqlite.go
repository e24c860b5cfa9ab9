// Package sqlite persists rosters as JSON snapshots in a local SQLite file.
// It backs offline deployments where no PostgreSQL server is available, for
// example a laptop at the shooting range.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // cgo-free sqlite driver

	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/store/generator"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/platform/sentinel"
)

type Store struct {
	db        *sql.DB
	generator generator.Generator
}

// NewStore opens (or creates) the SQLite database at path and ensures the
// snapshot table exists.
func NewStore(path string, gen generator.Generator) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The driver is not safe for concurrent writers over one file.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS rosters (
		tournament_id TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure rosters table: %w", err)
	}
	return &Store{db: db, generator: gen}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM rosters WHERE tournament_id = ?`,
		tournamentID.String(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select roster: %w", err)
	}
	var roster models.Roster
	if err := json.Unmarshal(payload, &roster); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return &roster, nil
}

func (s *Store) Save(ctx context.Context, tournamentID id.TournamentID, roster *models.Roster) error {
	payload, err := json.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO rosters (tournament_id, payload) VALUES (?, ?)
		 ON CONFLICT (tournament_id) DO UPDATE SET payload = excluded.payload`,
		tournamentID.String(), payload,
	); err != nil {
		return fmt.Errorf("upsert roster: %w", err)
	}
	return nil
}

func (s *Store) Regenerate(ctx context.Context, tournamentID id.TournamentID) (*models.Roster, error) {
	current, err := s.Load(ctx, tournamentID)
	if err != nil {
		return nil, err
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
