package dto

import (
	"time"

	"github.com/expert-marketplace/backend/internal/models"
)

type AttachmentRequest struct {
	Name          string `json:"name"`
	ContentBase64 string `json:"content_base64"`
}

type EvidenceRequest struct {
	Links       []string            `json:"links"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// PaymentTermsRequest is the flat wire shape of payment terms. Clients send
// only the fields matching their engagement model; Terms selects the variant.
type PaymentTermsRequest struct {
	DailyRate          float64 `json:"daily_rate"`
	TotalDays          int     `json:"total_days"`
	SprintRate         float64 `json:"sprint_rate"`
	SprintDurationDays int     `json:"sprint_duration_days"`
	TotalSprints       int     `json:"total_sprints"`
	TotalAmount        float64 `json:"total_amount"`
	HourlyRate         float64 `json:"hourly_rate"`
	EstimatedHours     float64 `json:"estimated_hours"`
}

// Terms maps the flat fields onto the variant for the given engagement model.
// Unknown models yield the zero value, which fails terms validation.
func (r PaymentTermsRequest) Terms(model string) models.PaymentTerms {
	switch model {
	case models.EngagementDaily:
		return models.PaymentTerms{Daily: &models.DailyTerms{
			DailyRate: r.DailyRate,
			TotalDays: r.TotalDays,
		}}
	case models.EngagementSprint:
		return models.PaymentTerms{Sprint: &models.SprintTerms{
			SprintRate:         r.SprintRate,
			SprintDurationDays: r.SprintDurationDays,
			TotalSprints:       r.TotalSprints,
			CurrentSprint:      1,
		}}
	case models.EngagementFixed:
		return models.PaymentTerms{Fixed: &models.FixedTerms{
			TotalAmount: r.TotalAmount,
		}}
	case models.EngagementHourly:
		return models.PaymentTerms{Hourly: &models.HourlyTerms{
			HourlyRate:     r.HourlyRate,
			EstimatedHours: r.EstimatedHours,
		}}
	}
	return models.PaymentTerms{}
}

type CreateContractRequest struct {
	ProjectID       string              `json:"project_id"`
	ExpertProfileID string              `json:"expert_profile_id"`
	EngagementModel string              `json:"engagement_model"`
	PaymentTerms    PaymentTermsRequest `json:"payment_terms"`
	NDARequired     bool                `json:"nda_required"`
}

type FundContractRequest struct {
	Amount float64 `json:"amount"`
}

type AcceptContractRequest struct {
	SignatureName string `json:"signature_name"`
}

type SignDocumentRequest struct {
	SignatureName string `json:"signature_name"`
}

type UpdateDocumentRequest struct {
	Content string `json:"content"`
}

type SubmitWorkLogRequest struct {
	ContractID      string          `json:"contract_id"`
	Description     string          `json:"description"`
	Checklist       []string        `json:"checklist"`
	RequestedAmount *float64        `json:"requested_amount"`
	Evidence        EvidenceRequest `json:"evidence"`
}

type UpdateWorkLogRequest struct {
	Description     *string          `json:"description"`
	Checklist       []string         `json:"checklist"`
	RequestedAmount *float64         `json:"requested_amount"`
	Evidence        *EvidenceRequest `json:"evidence"`
}

type ReviewRequest struct {
	Comment        *string  `json:"comment"`
	ApprovedAmount *float64 `json:"approved_amount"`
}

type UpdateWorkLogStatusRequest struct {
	Status         string   `json:"status"` // approved or rejected
	Comment        *string  `json:"comment"`
	ApprovedAmount *float64 `json:"approved_amount"`
}

type SubmitDaySummaryRequest struct {
	ContractID string          `json:"contract_id"`
	Summary    string          `json:"summary"`
	Evidence   EvidenceRequest `json:"evidence"`
}

type UpdateDaySummaryRequest struct {
	Summary  *string          `json:"summary"`
	Evidence *EvidenceRequest `json:"evidence"`
}

type CreateTimeEntryRequest struct {
	ContractID  string    `json:"contract_id"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	Description string    `json:"description"`
}

type UpdateTimeEntryRequest struct {
	StartedAt   *time.Time `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
	Description *string    `json:"description"`
}

type CreateInvitationRequest struct {
	ProjectID       string              `json:"project_id"`
	ExpertProfileID string              `json:"expert_profile_id"`
	EngagementModel string              `json:"engagement_model"`
	PaymentTerms    PaymentTermsRequest `json:"payment_terms"`
	Message         *string             `json:"message"`
	NDARequired     bool                `json:"nda_required"`
}

type RespondInvitationRequest struct {
	Status string `json:"status"` // accepted or declined
}

type SubmitProposalRequest struct {
	ProjectID       string              `json:"project_id"`
	EngagementModel string              `json:"engagement_model"`
	PaymentTerms    PaymentTermsRequest `json:"payment_terms"`
	CoverLetter     *string             `json:"cover_letter"`
}

type ReviewProposalRequest struct {
	Status string `json:"status"` // accepted or rejected
}

type CreateProjectRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Budget      float64 `json:"budget"`
}

type RaiseDisputeRequest struct {
	ContractID string `json:"contract_id"`
	Reason     string `json:"reason"`
}

type ResolveDisputeRequest struct {
	Resolution     string   `json:"resolution"`
	Note           *string  `json:"note"`
	WriteOffAmount *float64 `json:"write_off_amount"`
}
