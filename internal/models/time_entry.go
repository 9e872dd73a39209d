package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TimeEntryMinMinutes = 1
	TimeEntryMaxMinutes = 1440
)

type TimeEntry struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	ExpertProfileID uuid.UUID  `json:"expert_profile_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         time.Time  `json:"ended_at"`
	Minutes         int        `json:"minutes"`
	Description     string     `json:"description"`
	Amount          *float64   `json:"amount,omitempty"`
	Status          string     `json:"status"`
	ReviewComment   *string    `json:"review_comment,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CrossesDayBoundary reports whether [start, end) spans more than one calendar
// day. Comparison is date-only in UTC.
func CrossesDayBoundary(start, end time.Time) bool {
	s := start.UTC()
	e := end.UTC()
	// An entry ending exactly at midnight stays within the starting day.
	if e.Equal(e.Truncate(24 * time.Hour)) {
		e = e.Add(-time.Nanosecond)
	}
	sy, sm, sd := s.Date()
	ey, em, ed := e.Date()
	return sy != ey || sm != em || sd != ed
}

// Overlaps checks half-open interval overlap: [a1,a2) ∩ [b1,b2) ≠ ∅.
func (t *TimeEntry) Overlaps(start, end time.Time) bool {
	return t.StartedAt.Before(end) && start.Before(t.EndedAt)
}
