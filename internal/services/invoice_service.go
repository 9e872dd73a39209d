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

type InvoiceService struct {
	pool         *pgxpool.Pool
	invoiceRepo  *repositories.InvoiceRepo
	contractRepo *repositories.ContractRepo
	escrowRepo   *repositories.EscrowRepo
	auditRepo    *repositories.AuditRepo
	currency     *CurrencyClient
	publisher    events.Publisher
	notify       *NotifyClient
	cfg          *config.Config
	log          *zap.Logger
}

func NewInvoiceService(
	pool *pgxpool.Pool,
	invoiceRepo *repositories.InvoiceRepo,
	contractRepo *repositories.ContractRepo,
	escrowRepo *repositories.EscrowRepo,
	auditRepo *repositories.AuditRepo,
	currency *CurrencyClient,
	publisher events.Publisher,
	notify *NotifyClient,
	cfg *config.Config,
	log *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		pool:         pool,
		invoiceRepo:  invoiceRepo,
		contractRepo: contractRepo,
		escrowRepo:   escrowRepo,
		auditRepo:    auditRepo,
		currency:     currency,
		publisher:    publisher,
		notify:       notify,
		cfg:          cfg,
		log:          log,
	}
}

// InvoiceView wraps an invoice with an optional display-currency conversion.
type InvoiceView struct {
	models.Invoice
	DisplayAmount   *float64 `json:"display_amount,omitempty"`
	DisplayCurrency *string  `json:"display_currency,omitempty"`
}

func (s *InvoiceService) withDisplay(ctx context.Context, inv models.Invoice, displayCurrency string) InvoiceView {
	view := InvoiceView{Invoice: inv}
	if displayCurrency != "" && displayCurrency != s.cfg.BaseCurrency {
		amount, cur := s.currency.Convert(ctx, inv.Amount, s.cfg.BaseCurrency, displayCurrency)
		view.DisplayAmount = &amount
		view.DisplayCurrency = &cur
	}
	return view
}

func (s *InvoiceService) Get(ctx context.Context, ident auth.Identity, id uuid.UUID, displayCurrency string) (*InvoiceView, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("invoice not found")
		}
		return nil, err
	}
	if inv.BuyerProfileID != ident.ProfileID && inv.ExpertProfileID != ident.ProfileID && !ident.IsAdmin() {
		return nil, apperr.Forbidden("you are not a party to this invoice")
	}
	view := s.withDisplay(ctx, *inv, displayCurrency)
	return &view, nil
}

func (s *InvoiceService) List(ctx context.Context, ident auth.Identity, f repositories.InvoiceFilter, displayCurrency string) ([]InvoiceView, error) {
	switch {
	case ident.IsAdmin():
	case ident.Role == rbac.RoleBuyer:
		f.BuyerProfileID = &ident.ProfileID
	default:
		f.ExpertProfileID = &ident.ProfileID
	}

	invoices, err := s.invoiceRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, s.withDisplay(ctx, inv, displayCurrency))
	}
	return views, nil
}

// Pay settles a pending invoice from the contract's escrow balance. Escrow
// debit, released credit, ledger entry and invoice flip commit atomically.
func (s *InvoiceService) Pay(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.Invoice, error) {
	if !rbac.HasPermission(ident.Role, rbac.PermPayInvoice) {
		return nil, apperr.Forbidden("role %s cannot pay invoices", ident.Role)
	}

	peek, err := s.invoiceRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("invoice not found")
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
	if contract.BuyerProfileID != ident.ProfileID && !ident.IsAdmin() {
		return nil, apperr.Forbidden("only the buyer can pay this invoice")
	}

	inv, err := s.invoiceRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceStatusPending {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "invoice is %s, only pending invoices can be paid", inv.Status)
	}
	if contract.EscrowBalance < inv.Amount {
		return nil, apperr.Conflict(apperr.CodeValidation, "escrow balance %.2f is insufficient for invoice amount %.2f", contract.EscrowBalance, inv.Amount)
	}

	now := time.Now().UTC()
	newBalance := contract.EscrowBalance - inv.Amount
	newReleased := contract.ReleasedTotal + inv.Amount
	if err := s.contractRepo.UpdateFunds(ctx, tx, contract.ID, newBalance, newReleased); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.MarkPaid(ctx, tx, id, now); err != nil {
		return nil, err
	}
	if err := s.escrowRepo.Append(ctx, tx, &models.EscrowEntry{
		ContractID: contract.ID,
		InvoiceID:  &id,
		Direction:  models.EscrowEntryRelease,
		Amount:     inv.Amount,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	inv.Status = models.InvoiceStatusPaid
	inv.PaidAt = &now

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "invoice_paid",
		EntityType:     "invoice",
		EntityID:       &id,
		Meta:           map[string]any{"contract_id": contract.ID.String(), "amount": inv.Amount},
	})
	_ = s.publisher.Publish(ctx, events.ChannelBilling, events.Event{
		Type: events.EventInvoicePaid,
		Payload: map[string]any{
			"invoice_id":  id.String(),
			"contract_id": contract.ID.String(),
			"amount":      inv.Amount,
		},
	})
	_ = s.notify.Notify(ctx, inv.ExpertProfileID, events.EventInvoicePaid, map[string]any{
		"invoice_id": id.String(),
		"amount":     inv.Amount,
	})

	return inv, nil
}

// Void cancels a pending invoice. Admin only; paid invoices stay paid.
func (s *InvoiceService) Void(ctx context.Context, ident auth.Identity, id uuid.UUID) (*models.Invoice, error) {
	if !ident.IsAdmin() {
		return nil, apperr.Forbidden("only admins can void invoices")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inv, err := s.invoiceRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("invoice not found")
		}
		return nil, err
	}
	if inv.Status != models.InvoiceStatusPending {
		return nil, apperr.Conflict(apperr.CodeInvalidStateTransition, "invoice is %s, only pending invoices can be voided", inv.Status)
	}
	if err := s.invoiceRepo.MarkVoid(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	inv.Status = models.InvoiceStatusVoid

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "admin",
		Action:         "invoice_voided",
		EntityType:     "invoice",
		EntityID:       &id,
	})
	return inv, nil
}
