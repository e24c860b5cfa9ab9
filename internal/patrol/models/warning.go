package models

import id "patrolboard/pkg/domain"

// WarningType enumerates the diagnostic checks.
type WarningType string

const (
	WarningSameClubJudges WarningType = "same-club-judges"
	WarningMixedDivisions WarningType = "mixed-divisions"
	WarningMixedGenders   WarningType = "mixed-genders"
	WarningSizeImbalance  WarningType = "size-imbalance"
	WarningMissingLeader  WarningType = "missing-leader"
	WarningMissingJudges  WarningType = "missing-judges"
)

// Severity ranks a warning for display.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Warning is a derived diagnostic signal. Warnings are never persisted; the
// full list is recomputed from roster state after every mutation.
type Warning struct {
	PatrolID id.PatrolID `json:"patrol_id"`
	Type     WarningType `json:"type"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}
