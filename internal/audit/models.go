package audit

import "time"

// Action names an auditable roster operation.
type Action string

const (
	ActionRosterLoaded Action = "roster.loaded"
	ActionMemberMoved  Action = "roster.member_moved"
	ActionRoleChanged  Action = "roster.role_changed"
	ActionRosterSaved  Action = "roster.saved"
	ActionRegenerated  Action = "roster.regenerated"
)

// Event is emitted from domain logic to capture who changed which roster.
// Keep it transport-agnostic so stores and sinks can fan out; id fields are
// plain strings here so the audit trail survives schema drift in the domain.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	TournamentID string    `json:"tournament_id"`
	PatrolID     string    `json:"patrol_id,omitempty"`
	MemberID     string    `json:"member_id,omitempty"`
	ActorIP      string    `json:"actor_ip,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Detail       string    `json:"detail,omitempty"`
}
