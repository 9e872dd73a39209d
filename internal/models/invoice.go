package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/expert-marketplace/backend/internal/apperr"
)

// Invoice statuses
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusVoid    = "void"
)

// Invoice types
const (
	InvoiceTypePeriodic   = "periodic"
	InvoiceTypeSprint     = "sprint"
	InvoiceTypeMilestone  = "milestone"
	InvoiceTypeHourly     = "hourly"
	InvoiceTypeFinalFixed = "final_fixed"
)

// Invoice source types. (source_type, source_id) is unique: at most one
// invoice per underlying approved unit.
const (
	InvoiceSourceDaySummary = "day_work_summary"
	InvoiceSourceWorkLog    = "work_log"
	InvoiceSourceTimeEntry  = "time_entry"
	InvoiceSourceContract   = "contract"
)

type Invoice struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	BuyerProfileID  uuid.UUID  `json:"buyer_profile_id"`
	ExpertProfileID uuid.UUID  `json:"expert_profile_id"`
	Amount          float64    `json:"amount"`
	TotalHours      *float64   `json:"total_hours,omitempty"`
	Status          string     `json:"status"`
	InvoiceType     string     `json:"invoice_type"`
	SourceType      string     `json:"source_type"`
	SourceID        uuid.UUID  `json:"source_id"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DeriveTimeEntryAmount computes the invoice amount for an approved hourly
// entry: minutes/60 x hourly rate, falling back to a positive precomputed
// amount on the entry if one exists.
func DeriveTimeEntryAmount(entry *TimeEntry, terms PaymentTerms) float64 {
	if entry.Amount != nil && *entry.Amount > 0 {
		return *entry.Amount
	}
	if terms.Hourly == nil {
		return 0
	}
	return float64(entry.Minutes) / 60.0 * terms.Hourly.HourlyRate
}

// DeriveWorkLogInvoice resolves the invoice type and amount for an approved
// work log. Milestone requests bill the reviewer-approved amount; the
// requested amount on the log is the fallback.
func DeriveWorkLogInvoice(log *WorkLog, terms PaymentTerms, approvedAmount *float64) (string, float64, error) {
	switch log.LogType {
	case WorkLogTypeDailyLog:
		if terms.Daily == nil {
			return "", 0, apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "contract has no daily terms")
		}
		return InvoiceTypePeriodic, terms.Daily.DailyRate, nil
	case WorkLogTypeSprintSubmission:
		if terms.Sprint == nil {
			return "", 0, apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "contract has no sprint terms")
		}
		return InvoiceTypeSprint, terms.Sprint.SprintRate, nil
	case WorkLogTypeMilestoneRequest:
		amount := 0.0
		if approvedAmount != nil && *approvedAmount > 0 {
			amount = *approvedAmount
		} else if log.RequestedAmount != nil && *log.RequestedAmount > 0 {
			amount = *log.RequestedAmount
		}
		if amount <= 0 {
			return "", 0, apperr.Validation("an approved amount is required for a milestone invoice")
		}
		return InvoiceTypeMilestone, amount, nil
	}
	return "", 0, apperr.Validation("unknown work log type %q", log.LogType)
}

// DeriveFinalFixedAmount trues up a fixed-price contract at completion:
// total_amount minus the sum of prior non-void, non-final invoices, clamped
// at zero.
func DeriveFinalFixedAmount(totalAmount, priorInvoiced float64) float64 {
	remaining := totalAmount - priorInvoiced
	if remaining < 0 {
		return 0
	}
	return remaining
}
