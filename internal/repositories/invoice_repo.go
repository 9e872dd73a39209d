package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

const invoiceColumns = `id, contract_id, buyer_profile_id, expert_profile_id, amount, total_hours,
	       status, invoice_type, source_type, source_id, paid_at, created_at`

type InvoiceRepo struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepo(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

func (r *InvoiceRepo) Create(ctx context.Context, q Querier, inv *models.Invoice) error {
	return q.QueryRow(ctx, `
		INSERT INTO invoices (contract_id, buyer_profile_id, expert_profile_id, amount, total_hours,
		                      status, invoice_type, source_type, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, inv.ContractID, inv.BuyerProfileID, inv.ExpertProfileID, inv.Amount, inv.TotalHours,
		inv.Status, inv.InvoiceType, inv.SourceType, inv.SourceID,
	).Scan(&inv.ID, &inv.CreatedAt)
}

func scanInvoice(row interface{ Scan(...any) error }, inv *models.Invoice) error {
	return row.Scan(&inv.ID, &inv.ContractID, &inv.BuyerProfileID, &inv.ExpertProfileID, &inv.Amount, &inv.TotalHours,
		&inv.Status, &inv.InvoiceType, &inv.SourceType, &inv.SourceID, &inv.PaidAt, &inv.CreatedAt)
}

func (r *InvoiceRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	row := q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	if err := scanInvoice(row, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	row := q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
	if err := scanInvoice(row, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetBySource is the idempotency lookup: at most one invoice exists per
// (source_type, source_id).
func (r *InvoiceRepo) GetBySource(ctx context.Context, q Querier, sourceType string, sourceID uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	row := q.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE source_type = $1 AND source_id = $2
	`, sourceType, sourceID)
	if err := scanInvoice(row, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// SumPriorInvoiced totals non-void, non-final invoices for the contract, used
// by the final fixed settlement true-up.
func (r *InvoiceRepo) SumPriorInvoiced(ctx context.Context, q Querier, contractID uuid.UUID) (float64, error) {
	var sum float64
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM invoices
		WHERE contract_id = $1 AND status != 'void' AND invoice_type != 'final_fixed'
	`, contractID).Scan(&sum)
	return sum, err
}

type InvoiceFilter struct {
	ContractID      *uuid.UUID
	BuyerProfileID  *uuid.UUID
	ExpertProfileID *uuid.UUID
	Status          *string
	Limit           int
	Offset          int
}

func (r *InvoiceRepo) List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ContractID != nil {
		where = append(where, fmt.Sprintf("contract_id = $%d", argIdx))
		args = append(args, *f.ContractID)
		argIdx++
	}
	if f.BuyerProfileID != nil {
		where = append(where, fmt.Sprintf("buyer_profile_id = $%d", argIdx))
		args = append(args, *f.BuyerProfileID)
		argIdx++
	}
	if f.ExpertProfileID != nil {
		where = append(where, fmt.Sprintf("expert_profile_id = $%d", argIdx))
		args = append(args, *f.ExpertProfileID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := scanInvoice(rows, &inv); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (r *InvoiceRepo) MarkPaid(ctx context.Context, q Querier, id uuid.UUID, paidAt time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE invoices SET status = 'paid', paid_at = $1 WHERE id = $2 AND status = 'pending'
	`, paidAt, id)
	return err
}

func (r *InvoiceRepo) MarkVoid(ctx context.Context, q Querier, id uuid.UUID) error {
	_, err := q.Exec(ctx, `UPDATE invoices SET status = 'void' WHERE id = $1 AND status = 'pending'`, id)
	return err
}
