package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute statuses
const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

// Dispute resolutions
const (
	DisputeResolutionResume = "resume"
	DisputeResolutionCancel = "cancel"
)

// Dispute pauses its contract on creation and resumes or cancels it on
// resolution, both inside one transaction.
type Dispute struct {
	ID                uuid.UUID  `json:"id"`
	ContractID        uuid.UUID  `json:"contract_id"`
	RaisedByProfileID uuid.UUID  `json:"raised_by_profile_id"`
	Reason            string     `json:"reason"`
	Status            string     `json:"status"`
	Resolution        *string    `json:"resolution,omitempty"`
	ResolutionNote    *string    `json:"resolution_note,omitempty"`
	WriteOffAmount    *float64   `json:"write_off_amount,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
