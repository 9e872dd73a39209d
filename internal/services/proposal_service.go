package services

import (
	"context"

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

type ProposalService struct {
	pool         *pgxpool.Pool
	proposalRepo *repositories.ProposalRepo
	projectRepo  *repositories.ProjectRepo
	contractRepo *repositories.ContractRepo
	auditRepo    *repositories.AuditRepo
	contractSvc  *ContractService
	publisher    events.Publisher
	notify       *NotifyClient
	log          *zap.Logger
}

func NewProposalService(
	pool *pgxpool.Pool,
	proposalRepo *repositories.ProposalRepo,
	projectRepo *repositories.ProjectRepo,
	contractRepo *repositories.ContractRepo,
	auditRepo *repositories.AuditRepo,
	contractSvc *ContractService,
	publisher events.Publisher,
	notify *NotifyClient,
	log *zap.Logger,
) *ProposalService {
	return &ProposalService{
		pool:         pool,
		proposalRepo: proposalRepo,
		projectRepo:  projectRepo,
		contractRepo: contractRepo,
		auditRepo:    auditRepo,
		contractSvc:  contractSvc,
		publisher:    publisher,
		notify:       notify,
		log:          log,
	}
}

type SubmitProposalInput struct {
	ProjectID       uuid.UUID
	EngagementModel string
	PaymentTerms    models.PaymentTerms
	CoverLetter     *string
}

// Submit upserts the expert's proposal on a project. Resubmitting replaces
// the earlier terms and resets the proposal to pending.
func (s *ProposalService) Submit(ctx context.Context, ident auth.Identity, input SubmitProposalInput) (*models.Proposal, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermSubmitProposal) {
		return nil, apperr.Forbidden("role %s cannot submit proposals", ident.Role)
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
	if project.Status != models.ProjectStatusOpen {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "project is %s, proposals are only accepted on open projects", project.Status)
	}

	p := &models.Proposal{
		ProjectID:       input.ProjectID,
		ExpertProfileID: ident.ProfileID,
		EngagementModel: input.EngagementModel,
		PaymentTerms:    input.PaymentTerms,
		CoverLetter:     input.CoverLetter,
		Status:          models.ProposalStatusPending,
	}
	if err := s.proposalRepo.Upsert(ctx, p); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "proposal_submitted",
		EntityType:     "proposal",
		EntityID:       &p.ID,
		Meta:           map[string]any{"project_id": input.ProjectID.String()},
	})
	_ = s.notify.Notify(ctx, project.BuyerProfileID, "proposal_received", map[string]any{
		"proposal_id": p.ID.String(),
		"project":     project.Title,
	})

	return p, nil
}

func (s *ProposalService) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.Proposal, error) {
	p, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("proposal not found")
		}
		return nil, err
	}
	if p.ExpertProfileID == ident.ProfileID || ident.IsAdmin() {
		return p, nil
	}
	project, err := s.projectRepo.GetByID(ctx, s.pool, p.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.BuyerProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("you are not a party to this proposal")
	}
	return p, nil
}

func (s *ProposalService) List(ctx context.Context, ident auth.Identity, f repositories.ProposalFilter) ([]models.Proposal, error) {
	if f.ProjectID != nil {
		project, err := s.projectRepo.GetByID(ctx, s.pool, *f.ProjectID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, apperr.NotFound("project not found")
			}
			return nil, err
		}
		if project.BuyerProfileID != ident.ProfileID && !ident.IsAdmin() {
			f.ExpertProfileID = &ident.ProfileID
		}
	} else if !ident.IsAdmin() {
		f.ExpertProfileID = &ident.ProfileID
	}
	return s.proposalRepo.List(ctx, f)
}

// Review accepts or rejects a pending proposal. Acceptance creates a pending
// contract on the proposal's terms in the same transaction.
func (s *ProposalService) Review(ctx context.Context, ident auth.Identity, id uuid.UUID, accept bool) (*models.Proposal, *models.Contract, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermReviewProposal) {
		return nil, nil, apperr.Forbidden("role %s cannot review proposals", ident.Role)
	}

	p, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, apperr.NotFound("proposal not found")
		}
		return nil, nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, s.pool, p.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project.BuyerProfileID != ident.ProfileID {
		return nil, nil, apperr.Forbidden("only the project owner can review proposals")
	}
	if p.Status != models.ProposalStatusPending {
		return nil, nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "proposal is %s, only pending proposals can be reviewed", p.Status)
	}

	newStatus := models.ProposalStatusRejected
	var contract *models.Contract

	if accept {
		newStatus = models.ProposalStatusAccepted

		open, err := s.contractRepo.HasOpenContract(ctx, p.ProjectID, p.ExpertProfileID)
		if err != nil {
			return nil, nil, err
		}
		if open {
			return nil, nil, apperr.Conflict(apperr.CodeDuplicateContract, "an open contract already exists for this project and expert")
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, nil, err
		}
		defer tx.Rollback(ctx)

		contract = &models.Contract{
			ProjectID:       p.ProjectID,
			BuyerProfileID:  ident.ProfileID,
			ExpertProfileID: p.ExpertProfileID,
			EngagementModel: p.EngagementModel,
			PaymentTerms:    p.PaymentTerms,
		}
		if err := s.contractSvc.createWithAgreement(ctx, tx, contract, project); err != nil {
			return nil, nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, nil, err
		}
	}

	if err := s.proposalRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, nil, err
	}
	p.Status = newStatus

	meta := map[string]any{"status": newStatus}
	if contract != nil {
		meta["contract_id"] = contract.ID.String()
	}
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "proposal_" + newStatus,
		EntityType:     "proposal",
		EntityID:       &id,
		Meta:           meta,
	})
	_ = s.notify.Notify(ctx, p.ExpertProfileID, "proposal_reviewed", meta)

	return p, contract, nil
}
