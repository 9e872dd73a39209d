package models

import (
	"time"

	"github.com/google/uuid"
)

// Work log types
const (
	WorkLogTypeDailyLog         = "daily_log"
	WorkLogTypeSprintSubmission = "sprint_submission"
	WorkLogTypeMilestoneRequest = "milestone_request"
)

// Work unit statuses (shared by work logs, day summaries and time entries)
const (
	WorkUnitStatusDraft     = "draft"
	WorkUnitStatusSubmitted = "submitted"
	WorkUnitStatusApproved  = "approved"
	WorkUnitStatusRejected  = "rejected"
)

// Valid work unit transitions: from -> []to. Approval and rejection are
// terminal; only draft/submitted units may still be edited.
var ValidWorkUnitTransitions = map[string][]string{
	WorkUnitStatusDraft:     {WorkUnitStatusSubmitted},
	WorkUnitStatusSubmitted: {WorkUnitStatusApproved, WorkUnitStatusRejected},
	WorkUnitStatusApproved:  {},
	WorkUnitStatusRejected:  {},
}

func IsValidWorkUnitTransition(from, to string) bool {
	allowed, ok := ValidWorkUnitTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsEditableWorkUnitStatus reports whether the author may still edit the unit.
func IsEditableWorkUnitStatus(status string) bool {
	return status == WorkUnitStatusDraft || status == WorkUnitStatusSubmitted
}

// WorkLogTypeForModel maps an engagement model to the only work-log type it
// accepts. Hourly and daily contracts use their own evidence entities.
func WorkLogTypeForModel(model string) string {
	switch model {
	case EngagementDaily:
		return WorkLogTypeDailyLog
	case EngagementSprint:
		return WorkLogTypeSprintSubmission
	case EngagementFixed:
		return WorkLogTypeMilestoneRequest
	}
	return ""
}

type WorkLog struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	ExpertProfileID uuid.UUID  `json:"expert_profile_id"`
	LogType         string     `json:"log_type"`
	Status          string     `json:"status"`
	Description     string     `json:"description"`
	Checklist       []string   `json:"checklist,omitempty"`
	RequestedAmount *float64   `json:"requested_amount,omitempty"`
	SprintNumber    *int       `json:"sprint_number,omitempty"`
	WorkDate        time.Time  `json:"work_date"`
	Evidence        Evidence   `json:"evidence"`
	ReviewComment   *string    `json:"review_comment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type DayWorkSummary struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	ExpertProfileID uuid.UUID  `json:"expert_profile_id"`
	WorkDate        time.Time  `json:"work_date"`
	Status          string     `json:"status"`
	Summary         string     `json:"summary"`
	Evidence        Evidence   `json:"evidence"`
	ReviewComment   *string    `json:"review_comment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
