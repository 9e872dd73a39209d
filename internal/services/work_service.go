package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/apperr"
	"github.com/expert-marketplace/backend/internal/auth"
	"github.com/expert-marketplace/backend/internal/config"
	"github.com/expert-marketplace/backend/internal/events"
	"github.com/expert-marketplace/backend/internal/models"
	"github.com/expert-marketplace/backend/internal/rbac"
	"github.com/expert-marketplace/backend/internal/repositories"
)

type WorkService struct {
	pool         *pgxpool.Pool
	workLogRepo  *repositories.WorkLogRepo
	dayRepo      *repositories.DaySummaryRepo
	contractRepo *repositories.ContractRepo
	invoiceRepo  *repositories.InvoiceRepo
	auditRepo    *repositories.AuditRepo
	storage      *StorageClient
	publisher    events.Publisher
	notify       *NotifyClient
	cfg          *config.Config
	log          *zap.Logger
}

func NewWorkService(
	pool *pgxpool.Pool,
	workLogRepo *repositories.WorkLogRepo,
	dayRepo *repositories.DaySummaryRepo,
	contractRepo *repositories.ContractRepo,
	invoiceRepo *repositories.InvoiceRepo,
	auditRepo *repositories.AuditRepo,
	storage *StorageClient,
	publisher events.Publisher,
	notify *NotifyClient,
	cfg *config.Config,
	log *zap.Logger,
) *WorkService {
	return &WorkService{
		pool:         pool,
		workLogRepo:  workLogRepo,
		dayRepo:      dayRepo,
		contractRepo: contractRepo,
		invoiceRepo:  invoiceRepo,
		auditRepo:    auditRepo,
		storage:      storage,
		publisher:    publisher,
		notify:       notify,
		cfg:          cfg,
		log:          log,
	}
}

type AttachmentInput struct {
	Name          string `json:"name"`
	ContentBase64 string `json:"content_base64"`
}

type EvidenceInput struct {
	Links       []string          `json:"links"`
	Attachments []AttachmentInput `json:"attachments"`
}

// buildEvidence validates links and pushes attachments to storage before
// anything touches the database, so a failed upload leaves no partial unit.
func (s *WorkService) buildEvidence(ctx context.Context, input EvidenceInput) (models.Evidence, error) {
	ev := models.Evidence{Links: input.Links}
	if err := ev.ValidateLinks(); err != nil {
		return ev, err
	}
	for _, a := range input.Attachments {
		if a.Name == "" || a.ContentBase64 == "" {
			return ev, apperr.Validation("attachments require name and content_base64")
		}
		res, err := s.storage.Upload(ctx, a.Name, a.ContentBase64)
		if err != nil {
			return ev, err
		}
		ev.Attachments = append(ev.Attachments, models.EvidenceAttachment{
			Name: a.Name,
			Path: res.Path,
			URL:  res.URL,
		})
	}
	return ev, nil
}

// todayUTC returns the server-clock calendar date. All daily-unit date rules
// compare against this.
func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// activeContractForExpert loads the contract and applies the shared submit
// gates: caller is the contract's expert and the contract is active.
func (s *WorkService) activeContractForExpert(ctx context.Context, ident auth.Identity, contractID uuid.UUID) (*models.Contract, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermSubmitWork) {
		return nil, apperr.Forbidden("role %s cannot submit work", ident.Role)
	}
	contract, err := s.contractRepo.GetByID(ctx, s.pool, contractID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if contract.ExpertProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the contract's expert can submit work")
	}
	if contract.Status != models.ContractStatusActive {
		return nil, apperr.Conflict(apperr.CodeContractNotActive, "contract is %s, work can only be submitted on active contracts", contract.Status)
	}
	return contract, nil
}

type SubmitWorkLogInput struct {
	ContractID      uuid.UUID
	Description     string
	Checklist       []string
	RequestedAmount *float64
	Evidence        EvidenceInput
}

// validateUnitFields applies the per-type field rules shared by submission
// and amendment.
func validateUnitFields(logType string, checklist []string, requestedAmount *float64) error {
	switch logType {
	case models.WorkLogTypeSprintSubmission:
		if len(checklist) == 0 {
			return apperr.Validation("a sprint submission requires a non-empty checklist")
		}
	case models.WorkLogTypeMilestoneRequest:
		if requestedAmount == nil || *requestedAmount <= 0 {
			return apperr.Validation("requested_amount must be a positive number for a milestone request")
		}
	}
	return nil
}

// reviewOutcome resolves a review request against the unit's current status.
// Approving an already-approved unit is an idempotent no-op; every other
// repeat is a transition error.
func reviewOutcome(current string, approve bool) (newStatus string, noop bool, err error) {
	target := models.WorkUnitStatusRejected
	if approve {
		target = models.WorkUnitStatusApproved
	}
	if approve && current == models.WorkUnitStatusApproved {
		return current, true, nil
	}
	if !models.IsValidWorkUnitTransition(current, target) {
		return "", false, apperr.Conflict(apperr.CodeInvalidStateTransition, "cannot move a %s unit to %s", current, target)
	}
	return target, false, nil
}

// SubmitWorkLog creates the submission unit matching the contract's
// engagement model: daily log, sprint submission or milestone request.
func (s *WorkService) SubmitWorkLog(ctx context.Context, ident auth.Identity, input SubmitWorkLogInput) (*models.WorkLog, error) {
	contract, err := s.activeContractForExpert(ctx, ident, input.ContractID)
	if err != nil {
		return nil, err
	}

	logType := models.WorkLogTypeForModel(contract.EngagementModel)
	if logType == "" {
		return nil, apperr.BadRequest(apperr.CodeEngagementModelMismatch, "hourly contracts track work through time entries")
	}
	if input.Description == "" {
		return nil, apperr.Validation("description is required")
	}
	if err := validateUnitFields(logType, input.Checklist, input.RequestedAmount); err != nil {
		return nil, err
	}

	w := &models.WorkLog{
		ContractID:      contract.ID,
		ExpertProfileID: ident.ProfileID,
		LogType:         logType,
		Status:          models.WorkUnitStatusSubmitted,
		Description:     input.Description,
		Checklist:       input.Checklist,
		WorkDate:        todayUTC(),
	}

	switch logType {
	case models.WorkLogTypeDailyLog:
		// One billable daily unit per calendar day, across both daily logs
		// and day work summaries.
		if exists, err := s.workLogRepo.ExistsForDay(ctx, contract.ID, w.WorkDate); err != nil {
			return nil, err
		} else if exists {
			return nil, apperr.Conflict(apperr.CodeDuplicateDailySubmission, "a daily log already exists for today")
		}
		if exists, err := s.dayRepo.ExistsForDay(ctx, contract.ID, w.WorkDate); err != nil {
			return nil, err
		} else if exists {
			return nil, apperr.Conflict(apperr.CodeDuplicateDailySubmission, "a day work summary already exists for today")
		}
	case models.WorkLogTypeSprintSubmission:
		sprint := contract.PaymentTerms.Sprint
		if sprint.CurrentSprint > sprint.TotalSprints {
			return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "all %d sprints have been submitted", sprint.TotalSprints)
		}
		n := sprint.CurrentSprint
		w.SprintNumber = &n
	case models.WorkLogTypeMilestoneRequest:
		w.RequestedAmount = input.RequestedAmount
	}

	ev, err := s.buildEvidence(ctx, input.Evidence)
	if err != nil {
		return nil, err
	}
	w.Evidence = ev

	if err := s.workLogRepo.Create(ctx, s.pool, w); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict(apperr.CodeDuplicateDailySubmission, "a daily log already exists for today")
		}
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "work_log_submitted",
		EntityType:     "work_log",
		EntityID:       &w.ID,
		Meta:           map[string]any{"contract_id": contract.ID.String(), "log_type": logType},
	})
	_ = s.publisher.Publish(ctx, events.ChannelWork, events.Event{
		Type: events.EventWorkSubmitted,
		Payload: map[string]any{
			"work_log_id": w.ID.String(),
			"contract_id": contract.ID.String(),
			"log_type":    logType,
		},
	})
	_ = s.notify.Notify(ctx, contract.BuyerProfileID, events.EventWorkSubmitted, map[string]any{
		"contract_id": contract.ID.String(),
		"work_log_id": w.ID.String(),
	})

	return w, nil
}

type UpdateWorkLogInput struct {
	Description     *string
	Checklist       []string
	RequestedAmount *float64
	Evidence        *EvidenceInput
}

// UpdateWorkLog lets the expert amend a unit that has not been reviewed yet.
func (s *WorkService) UpdateWorkLog(ctx context.Context, ident auth.Identity, id uuid.UUID, input UpdateWorkLogInput) (*models.WorkLog, error) {
	w, err := s.workLogRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("work log not found")
		}
		return nil, err
	}
	if w.ExpertProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the author can edit a work log")
	}
	if !models.IsEditableWorkUnitStatus(w.Status) {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "a %s work log can no longer be edited", w.Status)
	}

	if input.Description != nil {
		w.Description = *input.Description
	}
	if input.Checklist != nil {
		w.Checklist = input.Checklist
	}
	if input.RequestedAmount != nil {
		if w.LogType != models.WorkLogTypeMilestoneRequest {
			return nil, apperr.Validation("requested_amount only applies to milestone requests")
		}
		w.RequestedAmount = input.RequestedAmount
	}
	if err := validateUnitFields(w.LogType, w.Checklist, w.RequestedAmount); err != nil {
		return nil, err
	}

	var replaced []models.EvidenceAttachment
	if input.Evidence != nil {
		replaced = w.Evidence.Attachments
		ev, err := s.buildEvidence(ctx, *input.Evidence)
		if err != nil {
			return nil, err
		}
		w.Evidence = ev
	}

	if err := s.workLogRepo.Update(ctx, s.pool, w); err != nil {
		return nil, err
	}
	// Replaced attachments are orphans now; removal is best effort.
	for _, a := range replaced {
		_ = s.storage.Delete(ctx, a.Path)
	}
	return w, nil
}

func (s *WorkService) GetWorkLog(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.WorkLog, error) {
	w, err := s.workLogRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("work log not found")
		}
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, s.pool, w.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	return w, nil
}

func (s *WorkService) ListWorkLogs(ctx context.Context, ident auth.Identity, f repositories.WorkLogFilter) ([]models.WorkLog, error) {
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
	return s.workLogRepo.List(ctx, f)
}

// reviewGate loads and locks the contract then the unit's row, verifying the
// caller may review work on it.
func (s *WorkService) reviewGate(ctx context.Context, tx pgx.Tx, ident auth.Identity, contractID uuid.UUID) (*models.Contract, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermReviewWork) {
		return nil, apperr.Forbidden("role %s cannot review work", ident.Role)
	}
	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.BuyerProfileID != ident.ProfileID && !ident.IsAdmin() {
		return nil, apperr.Forbidden("only the buyer can review work on this contract")
	}
	return contract, nil
}

// createInvoiceLocked writes the invoice for an approved unit, keyed by source
// for idempotency. A concurrent duplicate loses on the unique index.
func (s *WorkService) createInvoiceLocked(ctx context.Context, tx pgx.Tx, contract *models.Contract, inv *models.Invoice) error {
	if _, err := s.invoiceRepo.GetBySource(ctx, tx, inv.SourceType, inv.SourceID); err == nil {
		return nil
	} else if !repositories.IsNotFound(err) {
		return err
	}
	inv.ContractID = contract.ID
	inv.BuyerProfileID = contract.BuyerProfileID
	inv.ExpertProfileID = contract.ExpertProfileID
	inv.Status = models.InvoiceStatusPending
	if err := s.invoiceRepo.Create(ctx, tx, inv); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil
		}
		return err
	}
	_ = s.publisher.Publish(ctx, events.ChannelBilling, events.Event{
		Type: events.EventInvoiceCreated,
		Payload: map[string]any{
			"invoice_id":  inv.ID.String(),
			"contract_id": contract.ID.String(),
			"amount":      inv.Amount,
			"source_type": inv.SourceType,
		},
	})
	return nil
}

type ReviewInput struct {
	Approve        bool
	Comment        *string
	ApprovedAmount *float64
}

// ReviewWorkLog approves or rejects a submitted unit. Approval creates the
// invoice and, for sprint submissions, advances the sprint counter.
func (s *WorkService) ReviewWorkLog(ctx context.Context, ident auth.Identity, id uuid.UUID, input ReviewInput) (*models.WorkLog, error) {
	peek, err := s.workLogRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("work log not found")
		}
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.reviewGate(ctx, tx, ident, peek.ContractID)
	if err != nil {
		return nil, err
	}
	w, err := s.workLogRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	newStatus, noop, err := reviewOutcome(w.Status, input.Approve)
	if err != nil {
		return nil, err
	}
	if noop {
		return w, nil
	}

	now := time.Now().UTC()
	if err := s.workLogRepo.UpdateStatus(ctx, tx, id, newStatus, input.Comment, now); err != nil {
		return nil, err
	}
	w.Status = newStatus
	w.ReviewComment = input.Comment
	w.ReviewedAt = &now

	if input.Approve {
		invType, amount, err := models.DeriveWorkLogInvoice(w, contract.PaymentTerms, input.ApprovedAmount)
		if err != nil {
			return nil, err
		}
		if err := s.createInvoiceLocked(ctx, tx, contract, &models.Invoice{
			Amount:      amount,
			InvoiceType: invType,
			SourceType:  models.InvoiceSourceWorkLog,
			SourceID:    id,
		}); err != nil {
			return nil, err
		}

		// Sprint counter advances on approval. Exhausting the sprints leaves
		// the contract active; completion stays an explicit buyer action.
		if w.LogType == models.WorkLogTypeSprintSubmission && contract.PaymentTerms.Sprint != nil {
			terms := contract.PaymentTerms
			terms.Sprint.CurrentSprint++
			if err := s.contractRepo.UpdateTerms(ctx, tx, contract.ID, terms); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "work_log_" + newStatus,
		EntityType:     "work_log",
		EntityID:       &id,
		Meta:           map[string]any{"contract_id": contract.ID.String()},
	})
	_ = s.publisher.Publish(ctx, events.ChannelWork, events.Event{
		Type: events.EventWorkReviewed,
		Payload: map[string]any{
			"work_log_id": id.String(),
			"contract_id": contract.ID.String(),
			"status":      newStatus,
		},
	})
	_ = s.notify.Notify(ctx, w.ExpertProfileID, events.EventWorkReviewed, map[string]any{
		"work_log_id": id.String(),
		"status":      newStatus,
	})

	return w, nil
}

type SubmitDaySummaryInput struct {
	ContractID uuid.UUID
	Summary    string
	Evidence   EvidenceInput
}

// SubmitDaySummary records today's work on a daily engagement. One per
// contract per calendar day.
func (s *WorkService) SubmitDaySummary(ctx context.Context, ident auth.Identity, input SubmitDaySummaryInput) (*models.DayWorkSummary, error) {
	contract, err := s.activeContractForExpert(ctx, ident, input.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.EngagementModel != models.EngagementDaily {
		return nil, apperr.BadRequest(apperr.CodeEngagementModelMismatch, "day work summaries only apply to daily engagements")
	}
	if input.Summary == "" {
		return nil, apperr.Validation("summary is required")
	}

	day := todayUTC()
	if exists, err := s.dayRepo.ExistsForDay(ctx, contract.ID, day); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.Conflict(apperr.CodeDuplicateDailySubmission, "a day work summary already exists for today")
	}
	if exists, err := s.workLogRepo.ExistsForDay(ctx, contract.ID, day); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.Conflict(apperr.CodeDuplicateDailySubmission, "a daily log already exists for today")
	}

	ev, err := s.buildEvidence(ctx, input.Evidence)
	if err != nil {
		return nil, err
	}

	summary := &models.DayWorkSummary{
		ContractID:      contract.ID,
		ExpertProfileID: ident.ProfileID,
		WorkDate:        day,
		Status:          models.WorkUnitStatusSubmitted,
		Summary:         input.Summary,
		Evidence:        ev,
	}
	if err := s.dayRepo.Create(ctx, s.pool, summary); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict(apperr.CodeDuplicateDailySubmission, "a day work summary already exists for today")
		}
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "day_summary_submitted",
		EntityType:     "day_work_summary",
		EntityID:       &summary.ID,
		Meta:           map[string]any{"contract_id": contract.ID.String()},
	})
	_ = s.publisher.Publish(ctx, events.ChannelWork, events.Event{
		Type: events.EventWorkSubmitted,
		Payload: map[string]any{
			"day_work_summary_id": summary.ID.String(),
			"contract_id":         contract.ID.String(),
		},
	})
	_ = s.notify.Notify(ctx, contract.BuyerProfileID, events.EventWorkSubmitted, map[string]any{
		"contract_id":         contract.ID.String(),
		"day_work_summary_id": summary.ID.String(),
	})

	return summary, nil
}

type UpdateDaySummaryInput struct {
	Summary  *string
	Evidence *EvidenceInput
}

func (s *WorkService) UpdateDaySummary(ctx context.Context, ident auth.Identity, id uuid.UUID, input UpdateDaySummaryInput) (*models.DayWorkSummary, error) {
	summary, err := s.dayRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("day work summary not found")
		}
		return nil, err
	}
	if summary.ExpertProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the author can edit a day work summary")
	}
	if !models.IsEditableWorkUnitStatus(summary.Status) {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "a %s day work summary can no longer be edited", summary.Status)
	}

	if input.Summary != nil {
		summary.Summary = *input.Summary
	}
	var replaced []models.EvidenceAttachment
	if input.Evidence != nil {
		replaced = summary.Evidence.Attachments
		ev, err := s.buildEvidence(ctx, *input.Evidence)
		if err != nil {
			return nil, err
		}
		summary.Evidence = ev
	}

	if err := s.dayRepo.Update(ctx, s.pool, summary); err != nil {
		return nil, err
	}
	for _, a := range replaced {
		_ = s.storage.Delete(ctx, a.Path)
	}
	return summary, nil
}

func (s *WorkService) GetDaySummary(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.DayWorkSummary, error) {
	summary, err := s.dayRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("day work summary not found")
		}
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, s.pool, summary.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	return summary, nil
}

func (s *WorkService) ListDaySummaries(ctx context.Context, ident auth.Identity, f repositories.DaySummaryFilter) ([]models.DayWorkSummary, error) {
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
	return s.dayRepo.List(ctx, f)
}

// ReviewDaySummary approves or rejects the day's submission; approval raises
// a periodic invoice at the contract's daily rate.
func (s *WorkService) ReviewDaySummary(ctx context.Context, ident auth.Identity, id uuid.UUID, input ReviewInput) (*models.DayWorkSummary, error) {
	peek, err := s.dayRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("day work summary not found")
		}
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.reviewGate(ctx, tx, ident, peek.ContractID)
	if err != nil {
		return nil, err
	}
	summary, err := s.dayRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	newStatus, noop, err := reviewOutcome(summary.Status, input.Approve)
	if err != nil {
		return nil, err
	}
	if noop {
		return summary, nil
	}

	now := time.Now().UTC()
	if err := s.dayRepo.UpdateStatus(ctx, tx, id, newStatus, input.Comment, now); err != nil {
		return nil, err
	}
	summary.Status = newStatus
	summary.ReviewComment = input.Comment
	summary.ReviewedAt = &now

	if input.Approve {
		if contract.PaymentTerms.Daily == nil {
			return nil, apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "contract has no daily terms")
		}
		if err := s.createInvoiceLocked(ctx, tx, contract, &models.Invoice{
			Amount:      contract.PaymentTerms.Daily.DailyRate,
			InvoiceType: models.InvoiceTypePeriodic,
			SourceType:  models.InvoiceSourceDaySummary,
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
		Action:         "day_summary_" + newStatus,
		EntityType:     "day_work_summary",
		EntityID:       &id,
		Meta:           map[string]any{"contract_id": contract.ID.String()},
	})
	_ = s.publisher.Publish(ctx, events.ChannelWork, events.Event{
		Type: events.EventWorkReviewed,
		Payload: map[string]any{
			"day_work_summary_id": id.String(),
			"contract_id":         contract.ID.String(),
			"status":              newStatus,
		},
	})
	_ = s.notify.Notify(ctx, summary.ExpertProfileID, events.EventWorkReviewed, map[string]any{
		"day_work_summary_id": id.String(),
		"status":              newStatus,
	})

	return summary, nil
}
