package models

import (
	"github.com/expert-marketplace/backend/internal/apperr"
)

// Engagement models
const (
	EngagementDaily  = "daily"
	EngagementSprint = "sprint"
	EngagementFixed  = "fixed"
	EngagementHourly = "hourly"
)

func IsValidEngagementModel(m string) bool {
	switch m {
	case EngagementDaily, EngagementSprint, EngagementFixed, EngagementHourly:
		return true
	}
	return false
}

type DailyTerms struct {
	DailyRate float64 `json:"daily_rate"`
	TotalDays int     `json:"total_days"`
}

type SprintTerms struct {
	SprintRate         float64 `json:"sprint_rate"`
	SprintDurationDays int     `json:"sprint_duration_days"`
	TotalSprints       int     `json:"total_sprints"`
	CurrentSprint      int     `json:"current_sprint_number"`
}

type FixedTerms struct {
	TotalAmount float64 `json:"total_amount"`
}

type HourlyTerms struct {
	HourlyRate     float64 `json:"hourly_rate"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// PaymentTerms holds exactly one variant matching the contract's engagement
// model. Stored as JSONB; the zero value is invalid for every model.
type PaymentTerms struct {
	Daily  *DailyTerms  `json:"daily,omitempty"`
	Sprint *SprintTerms `json:"sprint,omitempty"`
	Fixed  *FixedTerms  `json:"fixed,omitempty"`
	Hourly *HourlyTerms `json:"hourly,omitempty"`
}

// Validate applies the same rule set at invitation-, proposal- and
// contract-creation time: every required field present and > 0.
func (t PaymentTerms) Validate(model string) error {
	switch model {
	case EngagementDaily:
		if t.Daily == nil {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "daily terms are required for a daily engagement")
		}
		if t.Daily.DailyRate <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "daily_rate must be a positive number")
		}
		if t.Daily.TotalDays <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "total_days must be a positive number")
		}
	case EngagementSprint:
		if t.Sprint == nil {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "sprint terms are required for a sprint engagement")
		}
		if t.Sprint.SprintRate <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "sprint_rate must be a positive number")
		}
		if t.Sprint.SprintDurationDays <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "sprint_duration_days must be a positive number")
		}
		if t.Sprint.TotalSprints <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "total_sprints must be a positive number")
		}
	case EngagementFixed:
		if t.Fixed == nil {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "fixed terms are required for a fixed engagement")
		}
		if t.Fixed.TotalAmount <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "total_amount must be a positive number")
		}
	case EngagementHourly:
		if t.Hourly == nil {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "hourly terms are required for an hourly engagement")
		}
		if t.Hourly.HourlyRate <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "hourly_rate must be a positive number")
		}
		if t.Hourly.EstimatedHours <= 0 {
			return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "estimated_hours must be a positive number")
		}
	default:
		return apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "unknown engagement model %q", model)
	}
	return nil
}

// ContractTotal is ContractValue with the project budget as a fallback
// ceiling when the terms produce no computable total.
func (t PaymentTerms) ContractTotal(model string, projectBudget float64) float64 {
	if v := t.ContractValue(model); v > 0 {
		return v
	}
	return projectBudget
}

// ContractValue derives the total contract value from the terms. Hourly
// engagements are estimates; the others are exact.
func (t PaymentTerms) ContractValue(model string) float64 {
	switch model {
	case EngagementDaily:
		if t.Daily == nil {
			return 0
		}
		return t.Daily.DailyRate * float64(t.Daily.TotalDays)
	case EngagementSprint:
		if t.Sprint == nil {
			return 0
		}
		return t.Sprint.SprintRate * float64(t.Sprint.TotalSprints)
	case EngagementFixed:
		if t.Fixed == nil {
			return 0
		}
		return t.Fixed.TotalAmount
	case EngagementHourly:
		if t.Hourly == nil {
			return 0
		}
		return t.Hourly.HourlyRate * t.Hourly.EstimatedHours
	}
	return 0
}
