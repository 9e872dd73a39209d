package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

const disputeColumns = `id, contract_id, raised_by_profile_id, reason, status,
	       resolution, resolution_note, write_off_amount, resolved_at, created_at`

type DisputeRepo struct {
	pool *pgxpool.Pool
}

func NewDisputeRepo(pool *pgxpool.Pool) *DisputeRepo {
	return &DisputeRepo{pool: pool}
}

func (r *DisputeRepo) Create(ctx context.Context, q Querier, d *models.Dispute) error {
	return q.QueryRow(ctx, `
		INSERT INTO disputes (contract_id, raised_by_profile_id, reason, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, d.ContractID, d.RaisedByProfileID, d.Reason, d.Status).Scan(&d.ID, &d.CreatedAt)
}

func scanDispute(row interface{ Scan(...any) error }, d *models.Dispute) error {
	return row.Scan(&d.ID, &d.ContractID, &d.RaisedByProfileID, &d.Reason, &d.Status,
		&d.Resolution, &d.ResolutionNote, &d.WriteOffAmount, &d.ResolvedAt, &d.CreatedAt)
}

func (r *DisputeRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	row := q.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id)
	if err := scanDispute(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	row := q.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1 FOR UPDATE`, id)
	if err := scanDispute(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// HasOpen reports whether the contract already has an unresolved dispute.
func (r *DisputeRepo) HasOpen(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM disputes WHERE contract_id = $1 AND status = 'open')
	`, contractID).Scan(&exists)
	return exists, err
}

func (r *DisputeRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.Dispute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE contract_id = $1 ORDER BY created_at DESC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []models.Dispute
	for rows.Next() {
		var d models.Dispute
		if err := scanDispute(rows, &d); err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, nil
}

func (r *DisputeRepo) Resolve(ctx context.Context, q Querier, id uuid.UUID, resolution string, note *string, writeOff *float64, at time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE disputes SET status = 'resolved', resolution = $1, resolution_note = $2, write_off_amount = $3, resolved_at = $4
		WHERE id = $5
	`, resolution, note, writeOff, at, id)
	return err
}
