package services

import (
	"context"
	"time"

	"github.com/google/uuid"
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

type InvitationService struct {
	pool           *pgxpool.Pool
	invitationRepo *repositories.InvitationRepo
	projectRepo    *repositories.ProjectRepo
	contractRepo   *repositories.ContractRepo
	auditRepo      *repositories.AuditRepo
	contractSvc    *ContractService
	publisher      events.Publisher
	notify         *NotifyClient
	cfg            *config.Config
	log            *zap.Logger
}

func NewInvitationService(
	pool *pgxpool.Pool,
	invitationRepo *repositories.InvitationRepo,
	projectRepo *repositories.ProjectRepo,
	contractRepo *repositories.ContractRepo,
	auditRepo *repositories.AuditRepo,
	contractSvc *ContractService,
	publisher events.Publisher,
	notify *NotifyClient,
	cfg *config.Config,
	log *zap.Logger,
) *InvitationService {
	return &InvitationService{
		pool:           pool,
		invitationRepo: invitationRepo,
		projectRepo:    projectRepo,
		contractRepo:   contractRepo,
		auditRepo:      auditRepo,
		contractSvc:    contractSvc,
		publisher:      publisher,
		notify:         notify,
		cfg:            cfg,
		log:            log,
	}
}

type CreateInvitationInput struct {
	ProjectID       uuid.UUID
	ExpertProfileID uuid.UUID
	EngagementModel string
	PaymentTerms    models.PaymentTerms
	Message         *string
	NDARequired     bool
}

// Create sends an invitation carrying fully validated engagement terms, so
// acceptance can mint a contract without renegotiation.
func (s *InvitationService) Create(ctx context.Context, ident auth.Identity, input CreateInvitationInput) (*models.Invitation, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermSendInvitation) {
		return nil, apperr.Forbidden("role %s cannot send invitations", ident.Role)
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
		return nil, apperr.Forbidden("only the project owner can invite experts")
	}

	pending, err := s.invitationRepo.HasPending(ctx, input.ProjectID, input.ExpertProfileID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.Conflict(apperr.CodeDuplicateInvitation, "a pending invitation already exists for this expert on this project")
	}
	open, err := s.contractRepo.HasOpenContract(ctx, input.ProjectID, input.ExpertProfileID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperr.Conflict(apperr.CodeDuplicateContract, "an open contract already exists for this project and expert")
	}

	inv := &models.Invitation{
		ProjectID:       input.ProjectID,
		BuyerProfileID:  ident.ProfileID,
		ExpertProfileID: input.ExpertProfileID,
		EngagementModel: input.EngagementModel,
		PaymentTerms:    input.PaymentTerms,
		Message:         input.Message,
		NDARequired:     input.NDARequired,
		Status:          models.InvitationStatusPending,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict(apperr.CodeDuplicateInvitation, "a pending invitation already exists for this expert on this project")
		}
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "invitation_sent",
		EntityType:     "invitation",
		EntityID:       &inv.ID,
		Meta:           map[string]any{"project_id": input.ProjectID.String(), "expert_profile_id": input.ExpertProfileID.String()},
	})
	_ = s.notify.Notify(ctx, input.ExpertProfileID, "invitation_received", map[string]any{
		"invitation_id": inv.ID.String(),
		"project":       project.Title,
	})

	return inv, nil
}

func (s *InvitationService) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.Invitation, error) {
	inv, err := s.invitationRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("invitation not found")
		}
		return nil, err
	}
	if inv.BuyerProfileID != ident.ProfileID && inv.ExpertProfileID != ident.ProfileID && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this invitation")
	}
	return inv, nil
}

func (s *InvitationService) List(ctx context.Context, ident auth.Identity, f repositories.InvitationFilter) ([]models.Invitation, error) {
	switch {
	case ident.IsAdmin():
	case ident.Role == rbac.RoleBuyer:
		f.BuyerProfileID = &ident.ProfileID
	default:
		f.ExpertProfileID = &ident.ProfileID
	}
	return s.invitationRepo.List(ctx, f)
}

// Respond accepts or declines a pending invitation. Acceptance converts it
// into a pending contract with generated documents, all in one transaction;
// the invitation row lock serializes concurrent responses.
func (s *InvitationService) Respond(ctx context.Context, ident auth.Identity, id uuid.UUID, accept bool) (*models.Invitation, *models.Contract, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermAcceptInvitation) {
		return nil, nil, apperr.Forbidden("role %s cannot respond to invitations", ident.Role)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	inv, err := s.invitationRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, apperr.NotFound("invitation not found")
		}
		return nil, nil, err
	}
	if inv.ExpertProfileID != ident.ProfileID {
		return nil, nil, apperr.Forbidden("only the invited expert can respond")
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "invitation is %s, only pending invitations accept a response", inv.Status)
	}

	now := time.Now().UTC()
	newStatus := models.InvitationStatusDeclined
	var contract *models.Contract

	if accept {
		newStatus = models.InvitationStatusAccepted

		project, err := s.projectRepo.GetByID(ctx, tx, inv.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		contract = &models.Contract{
			ProjectID:       inv.ProjectID,
			BuyerProfileID:  inv.BuyerProfileID,
			ExpertProfileID: inv.ExpertProfileID,
			EngagementModel: inv.EngagementModel,
			PaymentTerms:    inv.PaymentTerms,
			NDARequired:     inv.NDARequired,
		}
		if err := s.contractSvc.createWithAgreement(ctx, tx, contract, project); err != nil {
			return nil, nil, err
		}
		if err := s.projectRepo.UpdateStatus(ctx, tx, project.ID, models.ProjectStatusActive); err != nil {
			return nil, nil, err
		}
	}

	if err := s.invitationRepo.UpdateStatus(ctx, tx, id, newStatus, now); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	inv.Status = newStatus
	inv.RespondedAt = &now

	meta := map[string]any{"status": newStatus}
	if contract != nil {
		meta["contract_id"] = contract.ID.String()
	}
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "invitation_" + newStatus,
		EntityType:     "invitation",
		EntityID:       &id,
		Meta:           meta,
	})
	_ = s.publisher.Publish(ctx, events.ChannelContract, events.Event{
		Type:    events.EventInvitationResponded,
		Payload: map[string]any{"invitation_id": id.String(), "status": newStatus},
	})
	_ = s.notify.Notify(ctx, inv.BuyerProfileID, events.EventInvitationResponded, meta)

	return inv, contract, nil
}

// ExpireStale declines pending invitations older than the configured window.
// Called by the worker on a ticker.
func (s *InvitationService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.invitationRepo.ListStalePending(ctx, s.cfg.InvitationExpirySeconds)
	if err != nil {
		return 0, err
	}

	expired := 0
	now := time.Now().UTC()
	for _, inv := range stale {
		if err := s.invitationRepo.UpdateStatus(ctx, s.pool, inv.ID, models.InvitationStatusDeclined, now); err != nil {
			s.log.Warn("failed to expire invitation", zap.String("invitation_id", inv.ID.String()), zap.Error(err))
			continue
		}
		expired++
		_ = s.auditRepo.Log(ctx, models.AuditLog{
			ActorType:  "system",
			Action:     "invitation_expired",
			EntityType: "invitation",
			EntityID:   &inv.ID,
		})
		_ = s.notify.Notify(ctx, inv.BuyerProfileID, "invitation_expired", map[string]any{
			"invitation_id": inv.ID.String(),
		})
	}
	return expired, nil
}
