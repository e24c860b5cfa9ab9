// Package memory is an in-memory persistence gateway used in tests and in
// single-process deployments without a database.
package memory

import (
	"context"
	"sync"

	"patrolboard/internal/patrol/models"
	"patrolboard/internal/patrol/store/generator"
	id "patrolboard/pkg/domain"
	"patrolboard/pkg/platform/sentinel"
)

type Store struct {
	mu        sync.RWMutex
	rosters   map[id.TournamentID]*models.Roster
	generator generator.Generator
}

func NewStore(gen generator.Generator) *Store {
	return &Store{
		rosters:   make(map[id.TournamentID]*models.Roster),
		generator: gen,
	}
}

// Seed installs a roster without going through Save. Test helper.
func (s *Store) Seed(roster *models.Roster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[roster.TournamentID] = roster.Clone()
}

func (s *Store) Load(_ context.Context, tournamentID id.TournamentID) (*models.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roster, ok := s.rosters[tournamentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return roster.Clone(), nil
}

func (s *Store) Save(_ context.Context, tournamentID id.TournamentID, roster *models.Roster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[tournamentID] = roster.Clone()
	return nil
}

// Regenerate reassigns the tournament's registered participants into fresh
// patrols and persists the result.
func (s *Store) Regenerate(_ context.Context, tournamentID id.TournamentID) (*models.Roster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rosters[tournamentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	roster, err := s.generator.Generate(tournamentID, current.Participants)
	if err != nil {
		return nil, err
	}
	s.rosters[tournamentID] = roster
	return roster.Clone(), nil
}
