// Package domain defines typed identifiers shared across modules.
//
// IDs are distinct types over uuid.UUID so a ParticipantID can never be
// passed where a PatrolID is expected; the compiler enforces what the roster
// invariants assume. Parse functions are the trust boundary: handlers parse
// path and body ids through them before anything reaches a service.
package domain

import (
	"github.com/google/uuid"

	dErrors "patrolboard/pkg/domain-errors"
)

type (
	// TournamentID identifies a tournament and scopes every roster.
	TournamentID uuid.UUID
	// PatrolID identifies a patrol within a roster.
	PatrolID uuid.UUID
	// ParticipantID identifies a registered participant.
	ParticipantID uuid.UUID
)

func (id TournamentID) String() string  { return uuid.UUID(id).String() }
func (id PatrolID) String() string      { return uuid.UUID(id).String() }
func (id ParticipantID) String() string { return uuid.UUID(id).String() }

func (id TournamentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PatrolID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ParticipantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps ids as canonical UUID strings in JSON bodies and as
// map keys in serialized rosters.

func (id TournamentID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id PatrolID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ParticipantID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *TournamentID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *PatrolID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *ParticipantID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ParseTournamentID parses and validates a tournament id string.
func ParseTournamentID(s string) (TournamentID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return TournamentID{}, err
	}
	return TournamentID(u), nil
}

// ParsePatrolID parses and validates a patrol id string.
func ParsePatrolID(s string) (PatrolID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return PatrolID{}, err
	}
	return PatrolID(u), nil
}

// ParseParticipantID parses and validates a participant id string.
func ParseParticipantID(s string) (ParticipantID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ParticipantID{}, err
	}
	return ParticipantID(u), nil
}

// parseUUID rejects empty, malformed, and nil UUIDs. IDs must be valid,
// non-nil UUIDs at every trust boundary.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
