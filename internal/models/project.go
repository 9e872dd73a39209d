package models

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses
const (
	ProjectStatusOpen      = "open"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

type Project struct {
	ID             uuid.UUID `json:"id"`
	BuyerProfileID uuid.UUID `json:"buyer_profile_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Budget         float64   `json:"budget"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
