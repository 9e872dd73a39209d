package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract statuses
const (
	ContractStatusPending   = "pending"
	ContractStatusActive    = "active"
	ContractStatusPaused    = "paused"
	ContractStatusCompleted = "completed"
	ContractStatusCancelled = "cancelled"
	ContractStatusDeclined  = "declined"
)

// Valid state transitions: from -> []to
var ValidContractTransitions = map[string][]string{
	ContractStatusPending:   {ContractStatusActive, ContractStatusDeclined, ContractStatusCancelled},
	ContractStatusActive:    {ContractStatusPaused, ContractStatusCompleted, ContractStatusCancelled},
	ContractStatusPaused:    {ContractStatusActive, ContractStatusCancelled},
	ContractStatusCompleted: {},
	ContractStatusCancelled: {},
	ContractStatusDeclined:  {},
}

func IsValidContractTransition(from, to string) bool {
	allowed, ok := ValidContractTransitions[from]
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

func IsTerminalContractStatus(status string) bool {
	allowed, ok := ValidContractTransitions[status]
	return ok && len(allowed) == 0
}

type Contract struct {
	ID              uuid.UUID    `json:"id"`
	ProjectID       uuid.UUID    `json:"project_id"`
	BuyerProfileID  uuid.UUID    `json:"buyer_profile_id"`
	ExpertProfileID uuid.UUID    `json:"expert_profile_id"`
	EngagementModel string       `json:"engagement_model"`
	PaymentTerms    PaymentTerms `json:"payment_terms"`
	Status          string       `json:"status"`
	TotalAmount     float64      `json:"total_amount"`
	EscrowBalance   float64      `json:"escrow_balance"`
	ReleasedTotal   float64      `json:"released_total"`
	StartDate       *time.Time   `json:"start_date,omitempty"`
	NDARequired     bool         `json:"nda_required"`
	NDASignedAt     *time.Time   `json:"nda_signed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsParty reports whether the profile is the buyer or expert on the contract.
func (c *Contract) IsParty(profileID uuid.UUID) bool {
	return c.BuyerProfileID == profileID || c.ExpertProfileID == profileID
}

// ContractWithProject embeds Contract and adds project info to avoid N+1 queries.
type ContractWithProject struct {
	Contract
	ProjectTitle *string `json:"project_title,omitempty"`
}
