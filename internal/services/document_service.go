package services

import (
	"context"
	"fmt"
	"strings"
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

type DocumentService struct {
	pool         *pgxpool.Pool
	docRepo      *repositories.DocumentRepo
	contractRepo *repositories.ContractRepo
	projectRepo  *repositories.ProjectRepo
	profileRepo  *repositories.ProfileRepo
	auditRepo    *repositories.AuditRepo
	publisher    events.Publisher
	notify       *NotifyClient
	cfg          *config.Config
	log          *zap.Logger
}

func NewDocumentService(
	pool *pgxpool.Pool,
	docRepo *repositories.DocumentRepo,
	contractRepo *repositories.ContractRepo,
	projectRepo *repositories.ProjectRepo,
	profileRepo *repositories.ProfileRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	notify *NotifyClient,
	cfg *config.Config,
	log *zap.Logger,
) *DocumentService {
	return &DocumentService{
		pool:         pool,
		docRepo:      docRepo,
		contractRepo: contractRepo,
		projectRepo:  projectRepo,
		profileRepo:  profileRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		notify:       notify,
		cfg:          cfg,
		log:          log,
	}
}

// termsSummary renders the payment terms line used in generated documents.
func termsSummary(model string, terms models.PaymentTerms, currency string) string {
	switch model {
	case models.EngagementDaily:
		return fmt.Sprintf("a daily rate of %.2f %s for %d working days", terms.Daily.DailyRate, currency, terms.Daily.TotalDays)
	case models.EngagementSprint:
		return fmt.Sprintf("%d sprints of %d days each at %.2f %s per sprint", terms.Sprint.TotalSprints, terms.Sprint.SprintDurationDays, terms.Sprint.SprintRate, currency)
	case models.EngagementFixed:
		return fmt.Sprintf("a fixed price of %.2f %s payable against approved milestones", terms.Fixed.TotalAmount, currency)
	case models.EngagementHourly:
		return fmt.Sprintf("an hourly rate of %.2f %s for an estimated %.1f hours", terms.Hourly.HourlyRate, currency, terms.Hourly.EstimatedHours)
	}
	return ""
}

// RenderServiceAgreement produces the deterministic service agreement body.
// Regenerating with the same contract yields identical content, so the text
// itself can be compared to detect tampering.
func RenderServiceAgreement(c *models.Contract, projectTitle, buyerName, expertName, currency string) string {
	var b strings.Builder
	b.WriteString("SERVICE AGREEMENT\n\n")
	fmt.Fprintf(&b, "Contract reference: %s\n", c.ID)
	fmt.Fprintf(&b, "Project: %s\n\n", projectTitle)
	fmt.Fprintf(&b, "This agreement is entered into between %s (the Client) and %s (the Expert).\n\n", buyerName, expertName)
	fmt.Fprintf(&b, "1. Engagement. The Expert will provide services under a %s engagement.\n", c.EngagementModel)
	fmt.Fprintf(&b, "2. Compensation. The Client agrees to pay %s.\n", termsSummary(c.EngagementModel, c.PaymentTerms, currency))
	fmt.Fprintf(&b, "3. Total value. The total contract value is %.2f %s.\n", c.TotalAmount, currency)
	b.WriteString("4. Payment. Funds are held in escrow and released against approved work.\n")
	b.WriteString("5. Term. This agreement takes effect when signed by both parties and remains in force until the contract is completed or cancelled.\n")
	if c.NDARequired {
		b.WriteString("6. Confidentiality. A separate non-disclosure agreement applies to this engagement.\n")
	}
	return b.String()
}

// RenderNDA produces the deterministic NDA body.
func RenderNDA(c *models.Contract, projectTitle, buyerName, expertName string) string {
	var b strings.Builder
	b.WriteString("NON-DISCLOSURE AGREEMENT\n\n")
	fmt.Fprintf(&b, "Contract reference: %s\n", c.ID)
	fmt.Fprintf(&b, "Project: %s\n\n", projectTitle)
	fmt.Fprintf(&b, "This agreement is entered into between %s (the Disclosing Party) and %s (the Receiving Party).\n\n", buyerName, expertName)
	b.WriteString("1. Confidential information. All non-public material shared in the course of the engagement is confidential.\n")
	b.WriteString("2. Obligations. The Receiving Party will not disclose confidential information to any third party and will use it solely to perform the engagement.\n")
	b.WriteString("3. Duration. These obligations survive completion or cancellation of the contract for a period of two years.\n")
	return b.String()
}

func (s *DocumentService) Get(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.ContractDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("document not found")
		}
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, s.pool, doc.ContractID)
	if err != nil {
		return nil, err
	}
	if !contract.IsParty(ident.ProfileID) && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	return doc, nil
}

func (s *DocumentService) ListByContract(ctx context.Context, ident auth.Identity, contractID uuid.UUID) ([]models.ContractDocument, error) {
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
	return s.docRepo.ListByContract(ctx, contractID)
}

// CreateNDA attaches an NDA to an existing contract. The NDA becomes required
// for activation if the contract is still pending.
func (s *DocumentService) CreateNDA(ctx context.Context, ident auth.Identity, contractID uuid.UUID) (*models.ContractDocument, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermCreateNDA) {
		return nil, apperr.Forbidden("role %s cannot create an NDA", ident.Role)
	}

	contract, err := s.contractRepo.GetByIDWithProject(ctx, contractID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, err
	}
	if contract.BuyerProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the buyer can create an NDA")
	}
	if models.IsTerminalContractStatus(contract.Status) {
		return nil, apperr.Conflict(apperr.CodeContractNotActive, "contract is %s", contract.Status)
	}

	if _, err := s.docRepo.GetByContractAndType(ctx, s.pool, contractID, models.DocumentTypeNDA); err == nil {
		return nil, apperr.Conflict(apperr.CodeDocumentAlreadyExists, "an NDA already exists for this contract")
	} else if !repositories.IsNotFound(err) {
		return nil, err
	}

	buyerName, expertName, err := s.profileRepo.GetDisplayNames(ctx, contract.BuyerProfileID, contract.ExpertProfileID)
	if err != nil {
		return nil, err
	}

	title := ""
	if contract.ProjectTitle != nil {
		title = *contract.ProjectTitle
	}
	doc := &models.ContractDocument{
		ContractID:   contractID,
		DocumentType: models.DocumentTypeNDA,
		Content:      RenderNDA(&contract.Contract, title, buyerName, expertName),
		Status:       models.DocumentStatusPending,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.docRepo.Create(ctx, tx, doc); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, apperr.Conflict(apperr.CodeDocumentAlreadyExists, "an NDA already exists for this contract")
		}
		return nil, err
	}
	if !contract.NDARequired {
		if err := s.contractRepo.SetNDARequired(ctx, tx, contractID, true); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "nda_created",
		EntityType:     "document",
		EntityID:       &doc.ID,
		Meta:           map[string]any{"contract_id": contractID.String()},
	})

	return doc, nil
}

// UpdateContent replaces the document body. Allowed only before the first
// signature; signed text is legally fixed.
func (s *DocumentService) UpdateContent(ctx context.Context, ident auth.Identity, docID uuid.UUID, content string) (*models.ContractDocument, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("document content must not be empty")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	doc, err := s.docRepo.GetByIDForUpdate(ctx, tx, docID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("document not found")
		}
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, tx, doc.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.BuyerProfileID != ident.ProfileID {
		return nil, apperr.Forbidden("only the buyer can edit document content")
	}
	if doc.HasAnySignature() {
		return nil, apperr.Conflict(apperr.CodeDocumentImmutable, "document content is locked once signed")
	}

	if err := s.docRepo.UpdateContent(ctx, tx, docID, content); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	doc.Content = content
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "document_content_updated",
		EntityType:     "document",
		EntityID:       &docID,
	})
	return doc, nil
}

// signLocked records one party's signature and applies the activation cascade.
// The caller holds the contract row lock inside tx; both contract and doc are
// mutated in place to reflect the committed state.
func (s *DocumentService) signLocked(ctx context.Context, tx pgx.Tx, contract *models.Contract, doc *models.ContractDocument, party, name, ip string, at time.Time) (activated bool, err error) {
	if doc.SignedBy(party) {
		return false, apperr.Conflict(apperr.CodeAlreadySigned, "the %s has already signed this document", party)
	}

	if err := s.docRepo.RecordSignature(ctx, tx, doc.ID, party, name, ip, at); err != nil {
		return false, err
	}
	switch party {
	case models.SignerBuyer:
		doc.BuyerSignedAt = &at
		doc.BuyerSignatureName = &name
	case models.SignerExpert:
		doc.ExpertSignedAt = &at
		doc.ExpertSignatureName = &name
	}

	if doc.IsFullySigned() {
		if err := s.docRepo.UpdateStatus(ctx, tx, doc.ID, models.DocumentStatusSigned); err != nil {
			return false, err
		}
		doc.Status = models.DocumentStatusSigned

		if doc.DocumentType == models.DocumentTypeNDA {
			if err := s.contractRepo.SetNDASignedAt(ctx, tx, contract.ID, at); err != nil {
				return false, err
			}
			contract.NDASignedAt = &at
		}
	}

	if contract.Status != models.ContractStatusPending {
		return false, nil
	}

	// Activation: the service agreement fully signed, plus the NDA when one is
	// required.
	agreementSigned := false
	if doc.DocumentType == models.DocumentTypeServiceAgreement {
		agreementSigned = doc.IsFullySigned()
	} else {
		agreement, err := s.docRepo.GetByContractAndType(ctx, tx, contract.ID, models.DocumentTypeServiceAgreement)
		if err != nil {
			if repositories.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		agreementSigned = agreement.IsFullySigned()
	}
	ndaSigned := !contract.NDARequired || contract.NDASignedAt != nil

	if !agreementSigned || !ndaSigned {
		return false, nil
	}

	if err := s.contractRepo.UpdateStatus(ctx, tx, contract.ID, models.ContractStatusActive); err != nil {
		return false, err
	}
	if err := s.contractRepo.SetStartDate(ctx, tx, contract.ID, at); err != nil {
		return false, err
	}
	// Activation cascades to the project: work is now underway on it.
	if err := s.projectRepo.UpdateStatus(ctx, tx, contract.ProjectID, models.ProjectStatusActive); err != nil {
		return false, err
	}
	contract.Status = models.ContractStatusActive
	contract.StartDate = &at
	return true, nil
}

// Sign records the caller's signature on a document, activating the contract
// when the last required signature lands.
func (s *DocumentService) Sign(ctx context.Context, ident auth.Identity, docID uuid.UUID, signatureName, ip string) (*models.ContractDocument, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermSignDocument) {
		return nil, apperr.Forbidden("role %s cannot sign documents", ident.Role)
	}
	if strings.TrimSpace(signatureName) == "" {
		return nil, apperr.Validation("signature_name is required")
	}

	peek, err := s.docRepo.GetByID(ctx, s.pool, docID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("document not found")
		}
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock order everywhere: contract first, then document.
	contract, err := s.contractRepo.GetByIDForUpdate(ctx, tx, peek.ContractID)
	if err != nil {
		return nil, err
	}
	doc, err := s.docRepo.GetByIDForUpdate(ctx, tx, docID)
	if err != nil {
		return nil, err
	}

	var party string
	switch ident.ProfileID {
	case contract.BuyerProfileID:
		party = models.SignerBuyer
	case contract.ExpertProfileID:
		party = models.SignerExpert
	default:
		return nil, apperr.Forbidden("you are not a party to this contract")
	}

	if models.IsTerminalContractStatus(contract.Status) {
		return nil, apperr.Conflict(apperr.CodeContractNotActive, "contract is %s", contract.Status)
	}

	now := time.Now().UTC()
	activated, err := s.signLocked(ctx, tx, contract, doc, party, signatureName, ip, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         fmt.Sprintf("document_signed_%s", party),
		EntityType:     "document",
		EntityID:       &docID,
		Meta:           map[string]any{"contract_id": contract.ID.String(), "document_type": doc.DocumentType},
	})
	_ = s.publisher.Publish(ctx, events.ChannelContract, events.Event{
		Type: events.EventDocumentSigned,
		Payload: map[string]any{
			"contract_id":   contract.ID.String(),
			"document_id":   docID.String(),
			"document_type": doc.DocumentType,
			"signed_by":     party,
			"fully_signed":  doc.IsFullySigned(),
		},
	})

	other := contract.BuyerProfileID
	if party == models.SignerBuyer {
		other = contract.ExpertProfileID
	}
	_ = s.notify.Notify(ctx, other, events.EventDocumentSigned, map[string]any{
		"contract_id":   contract.ID.String(),
		"document_type": doc.DocumentType,
	})

	if activated {
		_ = s.auditRepo.Log(ctx, models.AuditLog{
			ActorProfileID: nil,
			ActorType:      "system",
			Action:         "contract_status_pending_to_active",
			EntityType:     "contract",
			EntityID:       &contract.ID,
		})
		_ = s.publisher.Publish(ctx, events.ChannelContract, events.Event{
			Type: events.EventContractStatusChanged,
			Payload: map[string]any{
				"contract_id": contract.ID.String(),
				"old_status":  models.ContractStatusPending,
				"new_status":  models.ContractStatusActive,
			},
		})
	}

	return doc, nil
}
