package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/apperr"
	"github.com/expert-marketplace/backend/internal/auth"
	"github.com/expert-marketplace/backend/internal/events"
	"github.com/expert-marketplace/backend/internal/models"
	"github.com/expert-marketplace/backend/internal/repositories"
)

type TimeEntryService struct {
	pool         *pgxpool.Pool
	entryRepo    *repositories.TimeEntryRepo
	contractRepo *repositories.ContractRepo
	invoiceRepo  *repositories.InvoiceRepo
	auditRepo    *repositories.AuditRepo
	workSvc      *WorkService
	publisher    events.Publisher
	notify       *NotifyClient
	log          *zap.Logger
}

func NewTimeEntryService(
	pool *pgxpool.Pool,
	entryRepo *repositories.TimeEntryRepo,
	contractRepo *repositories.ContractRepo,
	invoiceRepo *repositories.InvoiceRepo,
	auditRepo *repositories.AuditRepo,
	workSvc *WorkService,
	publisher events.Publisher,
	notify *NotifyClient,
	log *zap.Logger,
) *TimeEntryService {
	return &TimeEntryService{
		pool:         pool,
		entryRepo:    entryRepo,
		contractRepo: contractRepo,
		invoiceRepo:  invoiceRepo,
		auditRepo:    auditRepo,
		workSvc:      workSvc,
		publisher:    publisher,
		notify:       notify,
		log:          log,
	}
}

// validateInterval applies the shared entry rules: positive duration within
// one calendar day, between 1 minute and 24 hours.
func validateInterval(start, end time.Time) (int, error) {
	if !start.Before(end) {
		return 0, apperr.Validation("started_at must be before ended_at")
	}
	if models.CrossesDayBoundary(start, end) {
		return 0, apperr.BadRequest(apperr.CodeCrossesDayBoundary, "a time entry must stay within a single calendar day")
	}
	minutes := int(end.Sub(start).Minutes())
	if minutes < models.TimeEntryMinMinutes || minutes > models.TimeEntryMaxMinutes {
		return 0, apperr.Validation("a time entry must cover between %d and %d minutes", models.TimeEntryMinMinutes, models.TimeEntryMaxMinutes)
	}
	return minutes, nil
}

type CreateTimeEntryInput struct {
	ContractID  uuid.UUID
	StartedAt   time.Time
	EndedAt     time.Time
	Description string
}

// Create records a worked interval on an hourly contract. Overlapping another
// non-rejected entry is rejected.
func (s *TimeEntryService) Create(ctx context.Context, ident auth.Identity, input CreateTimeEntryInput) (*models.TimeEntry, error) {
	contract, err := s.workSvc.activeContractForExpert(ctx, ident, input.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.EngagementModel != models.EngagementHourly {
		return nil, apperr.BadRequest(apperr.CodeEngagementModelMismatch, "time entries only apply to hourly engagements")
	}
	if input.Description == "" {
		return nil, apperr.Validation("description is required")
	}

	minutes, err := validateInterval(input.StartedAt, input.EndedAt)
	if err != nil {
		return nil, err
	}

	overlap, err := s.entryRepo.HasOverlap(ctx, contract.ID, ident.ProfileID, input.StartedAt, input.EndedAt, nil)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperr.Conflict(apperr.CodeOverlappingTimeEntry, "the interval overlaps an existing time entry")
	}

	amount := float64(minutes) / 60.0 * contract.PaymentTerms.Hourly.HourlyRate
	entry := &models.TimeEntry{
		ContractID:      contract.ID,
		ExpertProfileID: ident.ProfileID,
		StartedAt:       input.StartedAt.UTC(),
		EndedAt:         input.EndedAt.UTC(),
		Minutes:         minutes,
		Description:     input.Description,
		Amount:          &amount,
		Status:          models.WorkUnitStatusSubmitted,
	}
	if err := s.entryRepo.Create(ctx, s.pool, entry); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "time_entry_submitted",
		EntityType:     "time_entry",
		EntityID:       &entry.ID,
		Meta:           map[string]any{"contract_id": contract.ID.String(), "minutes": minutes},
	})
	_ = s.publisher.Publish(ctx, events.ChannelWork, events.Event{
		Type: events.EventWorkSubmitted,
		Payload: map[string]any{
			"time_entry_id": entry.ID.String(),
			"contract_id":   contract.ID.String(),
		},
	})
	_ = s.notify.Notify(ctx, contract.BuyerProfileID, events.EventWorkSubmitted, map[string]any{
		"contract_id":   contract.ID.String(),
		"time_entry_id": entry.ID.String(),
	})

	return entry, nil
}

type UpdateTimeEntryInput struct {
	StartedAt   *time.Time
	EndedAt     *time.Time
	Description *string
}

func (s *TimeEntryService) Update(ctx context.Context, ident auth.Identity, id uuid.UUID, input UpdateTimeEntryInput) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("time entry not found")
		}
		return nil, err
	}
	if entry.ExpertProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the author can edit a time entry")
	}
	if !models.IsEditableWorkUnitStatus(entry.Status) {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "a %s time entry can no longer be edited", entry.Status)
	}

	start := entry.StartedAt
	end := entry.EndedAt
	if input.StartedAt != nil {
		start = input.StartedAt.UTC()
	}
	if input.EndedAt != nil {
		end = input.EndedAt.UTC()
	}

	if input.StartedAt != nil || input.EndedAt != nil {
		minutes, err := validateInterval(start, end)
		if err != nil {
			return nil, err
		}
		overlap, err := s.entryRepo.HasOverlap(ctx, entry.ContractID, ident.ProfileID, start, end, &entry.ID)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, apperr.Conflict(apperr.CodeOverlappingTimeEntry, "the interval overlaps an existing time entry")
		}

		contract, err := s.contractRepo.GetByID(ctx, s.pool, entry.ContractID)
		if err != nil {
			return nil, err
		}
		entry.StartedAt = start
		entry.EndedAt = end
		entry.Minutes = minutes
		if contract.PaymentTerms.Hourly != nil {
			amount := float64(minutes) / 60.0 * contract.PaymentTerms.Hourly.HourlyRate
			entry.Amount = &amount
		}
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}

	if err := s.entryRepo.Update(ctx, s.pool, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *TimeEntryService) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("time entry not found")
		}
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, s.pool, entry.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	return entry, nil
}

func (s *TimeEntryService) List(ctx context.Context, ident auth.Identity, f repositories.TimeEntryFilter) ([]models.TimeEntry, error) {
	if f.ContractID != nil {
		contract, err := s.contractRepo.GetByID(ctx, s.pool, *f.ContractID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, apperr.NotFound("contract not found")
			}
			return nil, err
		}
		if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
			return nil, apperr.Forbidden("you are not a party to this contract")
		}
	} else if !ident.IsAdmin() {
		f.ExpertProfileID = &ident.ProfileID
	}
	return s.entryRepo.List(ctx, f)
}

// Review approves or rejects a time entry; approval raises an hourly invoice
// for the entry's derived amount.
func (s *TimeEntryService) Review(ctx context.Context, ident auth.Identity, id uuid.UUID, input ReviewInput) (*models.TimeEntry, error) {
	peek, err := s.entryRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("time entry not found")
		}
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.workSvc.reviewGate(ctx, tx, ident, peek.ContractID)
	if err != nil {
		return nil, err
	}
	entry, err := s.entryRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	newStatus, noop, err := reviewOutcome(entry.Status, input.Approve)
	if err != nil {
		return nil, err
	}
	if noop {
		return entry, nil
	}

	now := time.Now().UTC()
	if err := s.entryRepo.UpdateStatus(ctx, tx, id, newStatus, input.Comment, now); err != nil {
		return nil, err
	}
	entry.Status = newStatus
	entry.ReviewComment = input.Comment
	entry.ReviewedAt = &now

	if input.Approve {
		amount := models.DeriveTimeEntryAmount(entry, contract.PaymentTerms)
		if amount <= 0 {
			return nil, apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "contract has no hourly terms")
		}
		hours := float64(entry.Minutes) / 60.0
		if err := s.workSvc.createInvoiceLocked(ctx, tx, contract, &models.Invoice{
			Amount:      amount,
			TotalHours:  &hours,
			InvoiceType: models.InvoiceTypeHourly,
			SourceType:  models.InvoiceSourceTimeEntry,
			SourceID:    id,
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "time_entry_" + newStatus,
		EntityType:     "time_entry",
		EntityID:       &id,
		Meta:           map[string]any{"contract_id": contract.ID.String()},
	})
	_ = s.publisher.Publish(ctx, events.ChannelWork, events.Event{
		Type: events.EventWorkReviewed,
		Payload: map[string]any{
			"time_entry_id": id.String(),
			"contract_id":   contract.ID.String(),
			"status":        newStatus,
		},
	})
	_ = s.notify.Notify(ctx, entry.ExpertProfileID, events.EventWorkReviewed, map[string]any{
		"time_entry_id": id.String(),
		"status":        newStatus,
	})

	return entry, nil
}
