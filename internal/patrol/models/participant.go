package models

import (
	"strings"

	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
)

// Participant is a registered tournament participant.
//
// Owned by the external participant registry: this module never creates or
// edits participants, it only indexes them by id. All fields are non-empty
// strings for a well-formed record; NewParticipant enforces that at the
// boundary where registry data enters the roster.
type Participant struct {
	ID       id.ParticipantID `json:"id"`
	Name     string           `json:"name"`
	Club     string           `json:"club"`
	Division string           `json:"division"`
	Gender   string           `json:"gender"`
}

// NewParticipant validates a registry record.
func NewParticipant(pid id.ParticipantID, name, club, division, gender string) (Participant, error) {
	p := Participant{
		ID:       pid,
		Name:     strings.TrimSpace(name),
		Club:     strings.TrimSpace(club),
		Division: strings.TrimSpace(division),
		Gender:   strings.TrimSpace(gender),
	}
	if p.ID.IsNil() {
		return Participant{}, dErrors.New(dErrors.CodeInvariantViolation, "participant id is required")
	}
	if p.Name == "" || p.Club == "" || p.Division == "" || p.Gender == "" {
		return Participant{}, dErrors.New(dErrors.CodeInvariantViolation, "participant fields must be non-empty")
	}
	return p, nil
}

// ParticipantIndex is the canonical id-indexed participant table. Patrols
// store ids only and resolve records through the index, so a patrol's view
// of a member can never drift from the canonical record.
type ParticipantIndex map[id.ParticipantID]Participant

// Clone returns an independent copy of the index.
func (idx ParticipantIndex) Clone() ParticipantIndex {
	if idx == nil {
		return nil
	}
	out := make(ParticipantIndex, len(idx))
	for k, v := range idx {
		out[k] = v
	}
	return out
}
