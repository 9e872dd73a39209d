package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation statuses
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
)

// Invitation is buyer-to-expert outreach with proposed engagement terms. At
// most one pending invitation may exist per (project, expert) pair; acceptance
// transactionally produces exactly one contract.
type Invitation struct {
	ID              uuid.UUID    `json:"id"`
	ProjectID       uuid.UUID    `json:"project_id"`
	BuyerProfileID  uuid.UUID    `json:"buyer_profile_id"`
	ExpertProfileID uuid.UUID    `json:"expert_profile_id"`
	EngagementModel string       `json:"engagement_model"`
	PaymentTerms    PaymentTerms `json:"payment_terms"`
	Message         *string      `json:"message,omitempty"`
	NDARequired     bool         `json:"nda_required"`
	Status          string       `json:"status"`
	RespondedAt     *time.Time   `json:"responded_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
