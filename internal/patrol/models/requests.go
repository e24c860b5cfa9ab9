package models

import (
	id "patrolboard/pkg/domain"
	dErrors "patrolboard/pkg/domain-errors"
)

// Role names the role slot a role-change request targets.
type Role string

const (
	RoleLeader Role = "leader"
	RoleJudge  Role = "judge"
	// RoleRemove strips both leader and judge flags from the member.
	RoleRemove Role = "remove"
)

// MoveRequest is the input layer's contract for reassigning a member. How
// the request was captured (pointer drag, keyboard) is outside this module.
type MoveRequest struct {
	MemberID     id.ParticipantID `json:"member_id"`
	SourcePatrol id.PatrolID      `json:"source_patrol_id"`
	TargetPatrol id.PatrolID      `json:"target_patrol_id"`
}

// Validate rejects structurally incomplete requests. Whether the ids
// resolve against the live roster is the validator's concern, not this one.
func (r MoveRequest) Validate() error {
	if r.MemberID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "member_id is required")
	}
	if r.SourcePatrol.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "source_patrol_id is required")
	}
	if r.TargetPatrol.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "target_patrol_id is required")
	}
	if r.SourcePatrol == r.TargetPatrol {
		return dErrors.New(dErrors.CodeInvalidInput, "source and target patrol must differ")
	}
	return nil
}

// RoleChangeRequest assigns or strips a role on a patrol member.
type RoleChangeRequest struct {
	PatrolID id.PatrolID      `json:"patrol_id"`
	MemberID id.ParticipantID `json:"member_id"`
	Role     Role             `json:"role"`
}

// Validate rejects structurally incomplete requests.
func (r RoleChangeRequest) Validate() error {
	if r.PatrolID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "patrol_id is required")
	}
	if r.MemberID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "member_id is required")
	}
	switch r.Role {
	case RoleLeader, RoleJudge, RoleRemove:
		return nil
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", r.Role)
	}
}
