package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal statuses
const (
	ProposalStatusPending  = "pending"
	ProposalStatusAccepted = "accepted"
	ProposalStatusRejected = "rejected"
)

// Proposal is an expert-to-buyer offer on a project. One per
// (project, expert); later submissions update in place.
type Proposal struct {
	ID              uuid.UUID    `json:"id"`
	ProjectID       uuid.UUID    `json:"project_id"`
	ExpertProfileID uuid.UUID    `json:"expert_profile_id"`
	EngagementModel string       `json:"engagement_model"`
	PaymentTerms    PaymentTerms `json:"payment_terms"`
	CoverLetter     *string      `json:"cover_letter,omitempty"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
