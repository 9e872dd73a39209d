package services

import (
	"context"
	"fmt"
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

type ContractService struct {
	pool         *pgxpool.Pool
	contractRepo *repositories.ContractRepo
	docRepo      *repositories.DocumentRepo
	projectRepo  *repositories.ProjectRepo
	profileRepo  *repositories.ProfileRepo
	escrowRepo   *repositories.EscrowRepo
	invoiceRepo  *repositories.InvoiceRepo
	auditRepo    *repositories.AuditRepo
	docSvc       *DocumentService
	publisher    events.Publisher
	notify       *NotifyClient
	cfg          *config.Config
	log          *zap.Logger
}

func NewContractService(
	pool *pgxpool.Pool,
	contractRepo *repositories.ContractRepo,
	docRepo *repositories.DocumentRepo,
	projectRepo *repositories.ProjectRepo,
	profileRepo *repositories.ProfileRepo,
	escrowRepo *repositories.EscrowRepo,
	invoiceRepo *repositories.InvoiceRepo,
	auditRepo *repositories.AuditRepo,
	docSvc *DocumentService,
	publisher events.Publisher,
	notify *NotifyClient,
	cfg *config.Config,
	log *zap.Logger,
) *ContractService {
	return &ContractService{
		pool:         pool,
		contractRepo: contractRepo,
		docRepo:      docRepo,
		projectRepo:  projectRepo,
		profileRepo:  profileRepo,
		escrowRepo:   escrowRepo,
		invoiceRepo:  invoiceRepo,
		auditRepo:    auditRepo,
		docSvc:       docSvc,
		publisher:    publisher,
		notify:       notify,
		cfg:          cfg,
		log:          log,
	}
}

// transition validates and performs a status transition with audit logging.
func (s *ContractService) transition(ctx context.Context, q repositories.Querier, c *models.Contract, newStatus string, actorID *uuid.UUID, actorType string) error {
	if !models.IsValidContractTransition(c.Status, newStatus) {
		return apperr.Conflict(apperr.CodeInvalidStateTransition, "cannot move contract from %s to %s", c.Status, newStatus)
	}

	oldStatus := c.Status
	if err := s.contractRepo.UpdateStatus(ctx, q, c.ID, newStatus); err != nil {
		return err
	}
	c.Status = newStatus

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: actorID,
		ActorType:      actorType,
		Action:         fmt.Sprintf("contract_status_%s_to_%s", oldStatus, newStatus),
		EntityType:     "contract",
		EntityID:       &c.ID,
		Meta:           map[string]any{"old_status": oldStatus, "new_status": newStatus},
	})

	_ = s.publisher.Publish(ctx, events.ChannelContract, events.Event{
		Type: events.EventContractStatusChanged,
		Payload: map[string]any{
			"contract_id": c.ID.String(),
			"old_status":  oldStatus,
			"new_status":  newStatus,
		},
	})

	return nil
}

type CreateContractInput struct {
	ProjectID       uuid.UUID
	ExpertProfileID uuid.UUID
	EngagementModel string
	PaymentTerms    models.PaymentTerms
	NDARequired     bool
}

// createWithAgreement inserts a pending contract and its generated service
// agreement (plus NDA when required) inside the caller's transaction. Shared
// by direct creation and invitation/proposal conversion.
func (s *ContractService) createWithAgreement(ctx context.Context, tx pgx.Tx, c *models.Contract, project *models.Project) error {
	c.Status = models.ContractStatusPending
	c.TotalAmount = c.PaymentTerms.ContractTotal(c.EngagementModel, project.Budget)

	if err := s.contractRepo.Create(ctx, tx, c); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return apperr.Conflict(apperr.CodeDuplicateContract, "an open contract already exists for this project and expert")
		}
		return err
	}

	buyerName, expertName, err := s.profileRepo.GetDisplayNames(ctx, c.BuyerProfileID, c.ExpertProfileID)
	if err != nil {
		return err
	}

	agreement := &models.ContractDocument{
		ContractID:   c.ID,
		DocumentType: models.DocumentTypeServiceAgreement,
		Content:      RenderServiceAgreement(c, project.Title, buyerName, expertName, s.cfg.BaseCurrency),
		Status:       models.DocumentStatusPending,
	}
	if err := s.docRepo.Create(ctx, tx, agreement); err != nil {
		return err
	}

	if c.NDARequired {
		nda := &models.ContractDocument{
			ContractID:   c.ID,
			DocumentType: models.DocumentTypeNDA,
			Content:      RenderNDA(c, project.Title, buyerName, expertName),
			Status:       models.DocumentStatusPending,
		}
		if err := s.docRepo.Create(ctx, tx, nda); err != nil {
			return err
		}
	}

	return nil
}

func (s *ContractService) Create(ctx context.Context, ident auth.Identity, input CreateContractInput) (*models.Contract, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermCreateContract) {
		return nil, apperr.Forbidden("role %s cannot create contracts", ident.Role)
	}
	if !models.IsValidEngagementModel(input.EngagementModel) {
		return nil, apperr.BadRequest(apperr.CodeInvalidPaymentTerms, "unknown engagement model %q", input.EngagementModel)
	}
	if err := input.PaymentTerms.Validate(input.EngagementModel); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, s.pool, input.ProjectID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, err
	}
	if project.BuyerProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the project owner can create a contract on it")
	}

	open, err := s.contractRepo.HasOpenContract(ctx, input.ProjectID, input.ExpertProfileID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperr.Conflict(apperr.CodeDuplicateContract, "an open contract already exists for this project and expert")
	}

	contract := &models.Contract{
		ProjectID:       input.ProjectID,
		BuyerProfileID:  ident.ProfileID,
		ExpertProfileID: input.ExpertProfileID,
		EngagementModel: input.EngagementModel,
		PaymentTerms:    input.PaymentTerms,
		NDARequired:     input.NDARequired,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.createWithAgreement(ctx, tx, contract, project); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "contract_created",
		EntityType:     "contract",
		EntityID:       &contract.ID,
		Meta:           map[string]any{"engagement_model": contract.EngagementModel, "total_amount": contract.TotalAmount},
	})
	_ = s.notify.Notify(ctx, contract.ExpertProfileID, "contract_offered", map[string]any{
		"contract_id": contract.ID.String(),
		"project":     project.Title,
	})

	return contract, nil
}

func (s *ContractService) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.ContractWithProject, error) {
	contract, err := s.contractRepo.GetByIDWithProject(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	return contract, nil
}

// List scopes non-admin callers to their own side of the table.
func (s *ContractService) List(ctx context.Context, ident auth.Identity, f repositories.ContractFilter) ([]models.Contract, error) {
	switch {
	case ident.IsAdmin():
	case ident.Role == rbac.RoleBuyer:
		f.BuyerProfileID = &ident.ProfileID
	default:
		f.ExpertProfileID = &ident.ProfileID
	}
	return s.contractRepo.List(ctx, f)
}

func (s *ContractService) GetEvents(ctx context.Context, ident auth.Identity, id uuid.UUID) ([]models.AuditLog, error) {
	if _, err := s.Get(ctx, ident, id); err != nil {
		return nil, err
	}
	return s.auditRepo.GetByEntity(ctx, "contract", id, 100, 0)
}

func (s *ContractService) ListEscrowEntries(ctx context.Context, ident auth.Identity, id uuid.UUID, limit, offset int) ([]models.EscrowEntry, error) {
	if _, err := s.Get(ctx, ident, id); err != nil {
		return nil, err
	}
	return s.escrowRepo.ListByContract(ctx, id, limit, offset)
}

// Decline lets the expert turn down a pending offer.
func (s *ContractService) Decline(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	if !rbac.HasPermission(ident.Role, rbac.PermDeclineContract) {
		return apperr.Forbidden("role %s cannot decline contracts", ident.Role)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperr.NotFound("contract not found")
		}
		return err
	}
	if contract.ExpertProfileID != ident.ProfileID {
		return apperr.Forbidden("only the offered expert can decline")
	}

	if err := s.transition(ctx, tx, contract, models.ContractStatusDeclined, &ident.ProfileID, "user"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	_ = s.notify.Notify(ctx, contract.BuyerProfileID, "contract_declined", map[string]any{
		"contract_id": contract.ID.String(),
	})
	return nil
}

// Cancel ends a non-terminal contract and refunds any remaining escrow to the
// buyer.
func (s *ContractService) Cancel(ctx context.Context, ident auth.Identity, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperr.NotFound("contract not found")
		}
		return err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return apperr.Forbidden("you are not a party to this contract")
	}

	if err := s.refundEscrowLocked(ctx, tx, contract, "contract cancelled"); err != nil {
		return err
	}
	if err := s.transition(ctx, tx, contract, models.ContractStatusCancelled, &ident.ProfileID, "user"); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// refundEscrowLocked zeroes the escrow balance with a refund ledger entry.
// Caller holds the contract row lock.
func (s *ContractService) refundEscrowLocked(ctx context.Context, tx pgx.Tx, contract *models.Contract, note string) error {
	if contract.EscrowBalance <= 0 {
		return nil
	}
	amount := contract.EscrowBalance
	if err := s.contractRepo.UpdateFunds(ctx, tx, contract.ID, 0, contract.ReleasedTotal); err != nil {
		return err
	}
	contract.EscrowBalance = 0
	return s.escrowRepo.Append(ctx, tx, &models.EscrowEntry{
		ContractID: contract.ID,
		Direction:  models.EscrowEntryRefund,
		Amount:     amount,
		Note:       &note,
	})
}

// Fund deposits buyer money into the contract's escrow balance.
func (s *ContractService) Fund(ctx context.Context, ident auth.Identity, id uuid.UUID, amount float64) (*models.Contract, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermFundEscrow) {
		return nil, apperr.Forbidden("role %s cannot fund escrow", ident.Role)
	}
	if amount <= 0 {
		return nil, apperr.Validation("amount must be a positive number")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if contract.BuyerProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the buyer can fund escrow")
	}
	if contract.Status != models.ContractStatusPending && contract.Status != models.ContractStatusActive {
		return nil, apperr.Conflict(apperr.CodeContractNotActive, "contract is %s", contract.Status)
	}

	newBalance := contract.EscrowBalance + amount
	if err := s.contractRepo.UpdateFunds(ctx, tx, id, newBalance, contract.ReleasedTotal); err != nil {
		return nil, err
	}
	if err := s.escrowRepo.Append(ctx, tx, &models.EscrowEntry{
		ContractID: id,
		Direction:  models.EscrowEntryDeposit,
		Amount:     amount,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	contract.EscrowBalance = newBalance

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "escrow_funded",
		EntityType:     "contract",
		EntityID:       &id,
		Meta:           map[string]any{"amount": amount, "escrow_balance": newBalance},
	})
	_ = s.notify.Notify(ctx, contract.ExpertProfileID, "escrow_funded", map[string]any{
		"contract_id": id.String(),
		"amount":      amount,
	})

	return contract, nil
}

// Complete closes out an active contract. Fixed-price engagements get a final
// settlement invoice for whatever the milestone invoices have not yet covered.
func (s *ContractService) Complete(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.Contract, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if contract.BuyerProfileID != ident.ProfileID && !ident.IsAdmin() {
		return nil, apperr.Forbidden("only the buyer can complete a contract")
	}
	if contract.Status != models.ContractStatusActive {
		return nil, apperr.Conflict(apperr.CodeContractNotActive, "contract is %s", contract.Status)
	}

	if contract.EngagementModel == models.EngagementFixed {
		if _, err := s.invoiceRepo.GetBySource(ctx, tx, models.InvoiceSourceContract, id); err != nil {
			if !repositories.IsNotFound(err) {
				return nil, err
			}
			prior, err := s.invoiceRepo.SumPriorInvoiced(ctx, tx, id)
			if err != nil {
				return nil, err
			}
			final := models.DeriveFinalFixedAmount(contract.TotalAmount, prior)
			if final > 0 {
				inv := &models.Invoice{
					ContractID:      id,
					BuyerProfileID:  contract.BuyerProfileID,
					ExpertProfileID: contract.ExpertProfileID,
					Amount:          final,
					Status:          models.InvoiceStatusPending,
					InvoiceType:     models.InvoiceTypeFinalFixed,
					SourceType:      models.InvoiceSourceContract,
					SourceID:        id,
				}
				if err := s.invoiceRepo.Create(ctx, tx, inv); err != nil {
					return nil, err
				}
				_ = s.publisher.Publish(ctx, events.ChannelBilling, events.Event{
					Type: events.EventInvoiceCreated,
					Payload: map[string]any{
						"invoice_id":  inv.ID.String(),
						"contract_id": id.String(),
						"amount":      final,
					},
				})
			}
		}
	}

	if err := s.transition(ctx, tx, contract, models.ContractStatusCompleted, &ident.ProfileID, "user"); err != nil {
		return nil, err
	}
	if err := s.projectRepo.UpdateStatus(ctx, tx, contract.ProjectID, models.ProjectStatusCompleted); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.notify.Notify(ctx, contract.ExpertProfileID, "contract_completed", map[string]any{
		"contract_id": id.String(),
	})
	return contract, nil
}

// AcceptAndSign records the expert's signature on the service agreement and,
// when required, the NDA in a single transaction. Activation happens here when
// the buyer has already signed.
func (s *ContractService) AcceptAndSign(ctx context.Context, ident auth.Identity, id uuid.UUID, signatureName, ip string) (*models.Contract, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermSignDocument) {
		return nil, apperr.Forbidden("role %s cannot sign documents", ident.Role)
	}
	if signatureName == "" {
		return nil, apperr.Validation("signature_name is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if contract.ExpertProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the offered expert can accept this contract")
	}
	if contract.Status != models.ContractStatusPending {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "contract is %s, only pending contracts can be accepted", contract.Status)
	}

	now := time.Now().UTC()

	if contract.NDARequired {
		nda, err := s.docRepo.GetByContractAndType(ctx, tx, id, models.DocumentTypeNDA)
		if err != nil {
			return nil, err
		}
		if !nda.SignedBy(models.SignerExpert) {
			if _, err := s.docSvc.signLocked(ctx, tx, contract, nda, models.SignerExpert, signatureName, ip, now); err != nil {
				return nil, err
			}
		}
	}

	agreement, err := s.docRepo.GetByContractAndType(ctx, tx, id, models.DocumentTypeServiceAgreement)
	if err != nil {
		return nil, err
	}
	activated := false
	if !agreement.SignedBy(models.SignerExpert) {
		activated, err = s.docSvc.signLocked(ctx, tx, contract, agreement, models.SignerExpert, signatureName, ip, now)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "contract_accepted",
		EntityType:     "contract",
		EntityID:       &id,
		Meta:           map[string]any{"activated": activated},
	})
	if activated {
		_ = s.publisher.Publish(ctx, events.ChannelContract, events.Event{
			Type: events.EventContractStatusChanged,
			Payload: map[string]any{
				"contract_id": id.String(),
				"old_status":  models.ContractStatusPending,
				"new_status":  models.ContractStatusActive,
			},
		})
	}
	_ = s.notify.Notify(ctx, contract.BuyerProfileID, "contract_accepted", map[string]any{
		"contract_id": id.String(),
		"activated":   activated,
	})

	return contract, nil
}
