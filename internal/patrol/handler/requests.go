package handler

import (
	"patrolboard/internal/patrol/models"
	id "patrolboard/pkg/domain"
)

type moveRequest struct {
	MemberID     string `json:"member_id"`
	SourcePatrol string `json:"source_patrol_id"`
	TargetPatrol string `json:"target_patrol_id"`
}

func (r moveRequest) toDomain() (models.MoveRequest, error) {
	memberID, err := id.ParseParticipantID(r.MemberID)
	if err != nil {
		return models.MoveRequest{}, err
	}
	sourceID, err := id.ParsePatrolID(r.SourcePatrol)
	if err != nil {
		return models.MoveRequest{}, err
	}
	targetID, err := id.ParsePatrolID(r.TargetPatrol)
	if err != nil {
		return models.MoveRequest{}, err
	}
	req := models.MoveRequest{
		MemberID:     memberID,
		SourcePatrol: sourceID,
		TargetPatrol: targetID,
	}
	return req, req.Validate()
}

type roleChangeRequest struct {
	PatrolID string `json:"patrol_id"`
	MemberID string `json:"member_id"`
	Role     string `json:"role"`
}

func (r roleChangeRequest) toDomain() (models.RoleChangeRequest, error) {
	patrolID, err := id.ParsePatrolID(r.PatrolID)
	if err != nil {
		return models.RoleChangeRequest{}, err
	}
	memberID, err := id.ParseParticipantID(r.MemberID)
	if err != nil {
		return models.RoleChangeRequest{}, err
	}
	req := models.RoleChangeRequest{
		PatrolID: patrolID,
		MemberID: memberID,
		Role:     models.Role(r.Role),
	}
	return req, req.Validate()
}

type regenerateRequest struct {
	Confirm bool `json:"confirm"`
}
