package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

// Append writes a ledger entry. Called inside the same transaction that
// updates the contract's escrow rollup columns.
func (r *EscrowRepo) Append(ctx context.Context, q Querier, e *models.EscrowEntry) error {
	return q.QueryRow(ctx, `
		INSERT INTO escrow_ledger (contract_id, invoice_id, direction, amount, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.ContractID, e.InvoiceID, e.Direction, e.Amount, e.Note).Scan(&e.ID, &e.CreatedAt)
}

func (r *EscrowRepo) ListByContract(ctx context.Context, contractID uuid.UUID, limit, offset int) ([]models.EscrowEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, contract_id, invoice_id, direction, amount, note, created_at
		FROM escrow_ledger WHERE contract_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, contractID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.EscrowEntry
	for rows.Next() {
		var e models.EscrowEntry
		if err := rows.Scan(&e.ID, &e.ContractID, &e.InvoiceID, &e.Direction, &e.Amount, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Balances recomputes deposited and released totals from the ledger, used by
// the worker's reconciliation sweep.
func (r *EscrowRepo) Balances(ctx context.Context, contractID uuid.UUID) (deposited, released float64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'deposit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction IN ('release', 'write_off', 'refund')), 0)
		FROM escrow_ledger WHERE contract_id = $1
	`, contractID).Scan(&deposited, &released)
	return deposited, released, err
}
