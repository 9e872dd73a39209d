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
	"github.com/expert-marketplace/backend/internal/rbac"
	"github.com/expert-marketplace/backend/internal/repositories"
)

type DisputeService struct {
	pool         *pgxpool.Pool
	disputeRepo  *repositories.DisputeRepo
	contractRepo *repositories.ContractRepo
	escrowRepo   *repositories.EscrowRepo
	auditRepo    *repositories.AuditRepo
	contractSvc  *ContractService
	publisher    events.Publisher
	notify       *NotifyClient
	log          *zap.Logger
}

func NewDisputeService(
	pool *pgxpool.Pool,
	disputeRepo *repositories.DisputeRepo,
	contractRepo *repositories.ContractRepo,
	escrowRepo *repositories.EscrowRepo,
	auditRepo *repositories.AuditRepo,
	contractSvc *ContractService,
	publisher events.Publisher,
	notify *NotifyClient,
	log *zap.Logger,
) *DisputeService {
	return &DisputeService{
		pool:         pool,
		disputeRepo:  disputeRepo,
		contractRepo: contractRepo,
		escrowRepo:   escrowRepo,
		auditRepo:    auditRepo,
		contractSvc:  contractSvc,
		publisher:    publisher,
		notify:       notify,
		log:          log,
	}
}

// Raise opens a dispute and pauses the contract in one transaction.
func (s *DisputeService) Raise(ctx context.Context, ident auth.Identity, contractID uuid.UUID, reason string) (*models.Dispute, error) {
	if reason == "" {
		return nil, apperr.Validation("reason is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, contractID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) {
		return nil, apperr.Forbidden("only a contract party can raise a dispute")
	}
	if contract.Status != models.ContractStatusActive {
		return nil, apperr.Conflict(apperr.CodeContractNotActive, "contract is %s, disputes can only be raised on active contracts", contract.Status)
	}

	open, err := s.disputeRepo.HasOpen(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "an open dispute already exists for this contract")
	}

	d := &models.Dispute{
		ContractID:        contractID,
		RaisedByProfileID: ident.ProfileID,
		Reason:            reason,
		Status:            models.DisputeStatusOpen,
	}
	if err := s.disputeRepo.Create(ctx, tx, d); err != nil {
		return nil, err
	}
	if err := s.contractSvc.transition(ctx, tx, contract, models.ContractStatusPaused, &ident.ProfileID, "user"); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "dispute_raised",
		EntityType:     "dispute",
		EntityID:       &d.ID,
		Meta:           map[string]any{"contract_id": contractID.String()},
	})
	_ = s.publisher.Publish(ctx, events.ChannelContract, events.Event{
		Type: events.EventDisputeRaised,
		Payload: map[string]any{
			"dispute_id":  d.ID.String(),
			"contract_id": contractID.String(),
		},
	})

	other := contract.BuyerProfileID
	if ident.ProfileID == contract.BuyerProfileID {
		other = contract.ExpertProfileID
	}
	_ = s.notify.Notify(ctx, other, events.EventDisputeRaised, map[string]any{
		"dispute_id":  d.ID.String(),
		"contract_id": contractID.String(),
	})

	return d, nil
}

func (s *DisputeService) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.Dispute, error) {
	d, err := s.disputeRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("dispute not found")
		}
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, s.pool, d.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this dispute")
	}
	return d, nil
}

func (s *DisputeService) ListByContract(ctx context.Context, ident auth.Identity, contractID uuid.UUID) ([]models.Dispute, error) {
	contract, err := s.contractRepo.GetByID(ctx, s.pool, contractID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	return s.disputeRepo.ListByContract(ctx, contractID)
}

type ResolveDisputeInput struct {
	Resolution     string
	Note           *string
	WriteOffAmount *float64
}

// Resolve closes a dispute: resume reactivates the contract, cancel ends it
// and refunds remaining escrow, optionally after a write-off.
func (s *DisputeService) Resolve(ctx context.Context, ident auth.Identity, id uuid.UUID, input ResolveDisputeInput) (*models.Dispute, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermResolveDispute) {
		return nil, apperr.Forbidden("role %s cannot resolve disputes", ident.Role)
	}
	if input.Resolution != models.DisputeResolutionResume && input.Resolution != models.DisputeResolutionCancel {
		return nil, apperr.Validation("resolution must be %q or %q", models.DisputeResolutionResume, models.DisputeResolutionCancel)
	}
	if input.WriteOffAmount != nil && *input.WriteOffAmount < 0 {
		return nil, apperr.Validation("write_off_amount must not be negative")
	}

	peek, err := s.disputeRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("dispute not found")
		}
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, peek.ContractID)
	if err != nil {
		return nil, err
	}
	d, err := s.disputeRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != models.DisputeStatusOpen {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "dispute is already %s", d.Status)
	}

	now := time.Now().UTC()

	if input.WriteOffAmount != nil && *input.WriteOffAmount > 0 {
		amount := *input.WriteOffAmount
		if amount > contract.EscrowBalance {
			return nil, apperr.Validation("write_off_amount %.2f exceeds escrow balance %.2f", amount, contract.EscrowBalance)
		}
		if err := s.contractRepo.UpdateFunds(ctx, tx, contract.ID, contract.EscrowBalance-amount, contract.ReleasedTotal); err != nil {
			return nil, err
		}
		contract.EscrowBalance -= amount
		if err := s.escrowRepo.Append(ctx, tx, &models.EscrowEntry{
			ContractID: contract.ID,
			Direction:  models.EscrowEntryWriteOff,
			Amount:     amount,
			Note:       input.Note,
		}); err != nil {
			return nil, err
		}
	}

	switch input.Resolution {
	case models.DisputeResolutionResume:
		if err := s.contractSvc.transition(ctx, tx, contract, models.ContractStatusActive, &ident.ProfileID, "admin"); err != nil {
			return nil, err
		}
	case models.DisputeResolutionCancel:
		if err := s.contractSvc.refundEscrowLocked(ctx, tx, contract, "dispute resolved as cancel"); err != nil {
			return nil, err
		}
		if err := s.contractSvc.transition(ctx, tx, contract, models.ContractStatusCancelled, &ident.ProfileID, "admin"); err != nil {
			return nil, err
		}
	}

	if err := s.disputeRepo.Resolve(ctx, tx, id, input.Resolution, input.Note, input.WriteOffAmount, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	d.Status = models.DisputeStatusResolved
	d.Resolution = &input.Resolution
	d.ResolutionNote = input.Note
	d.WriteOffAmount = input.WriteOffAmount
	d.ResolvedAt = &now

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "admin",
		Action:         "dispute_resolved_" + input.Resolution,
		EntityType:     "dispute",
		EntityID:       &id,
		Meta:           map[string]any{"contract_id": contract.ID.String()},
	})
	_ = s.notify.Notify(ctx, contract.BuyerProfileID, "dispute_resolved", map[string]any{"dispute_id": id.String(), "resolution": input.Resolution})
	_ = s.notify.Notify(ctx, contract.ExpertProfileID, "dispute_resolved", map[string]any{"dispute_id": id.String(), "resolution": input.Resolution})

	return d, nil
}
