package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

const contractColumns = `id, project_id, buyer_profile_id, expert_profile_id, engagement_model, payment_terms,
	       status, total_amount, escrow_balance, released_total, start_date,
	       nda_required, nda_signed_at, created_at, updated_at`

type ContractRepo struct {
	pool *pgxpool.Pool
}

func NewContractRepo(pool *pgxpool.Pool) *ContractRepo {
	return &ContractRepo{pool: pool}
}

func (r *ContractRepo) Create(ctx context.Context, q Querier, c *models.Contract) error {
	terms, err := json.Marshal(c.PaymentTerms)
	if err != nil {
		return err
	}
	return q.QueryRow(ctx, `
		INSERT INTO contracts (project_id, buyer_profile_id, expert_profile_id, engagement_model, payment_terms,
		                       status, total_amount, escrow_balance, released_total, start_date, nda_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, c.ProjectID, c.BuyerProfileID, c.ExpertProfileID, c.EngagementModel, terms,
		c.Status, c.TotalAmount, c.EscrowBalance, c.ReleasedTotal, c.StartDate, c.NDARequired,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func scanContract(row interface{ Scan(...any) error }, c *models.Contract) error {
	var terms []byte
	if err := row.Scan(&c.ID, &c.ProjectID, &c.BuyerProfileID, &c.ExpertProfileID, &c.EngagementModel, &terms,
		&c.Status, &c.TotalAmount, &c.EscrowBalance, &c.ReleasedTotal, &c.StartDate,
		&c.NDARequired, &c.NDASignedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	return json.Unmarshal(terms, &c.PaymentTerms)
}

func (r *ContractRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	row := q.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
	if err := scanContract(row, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByIDForUpdate locks the contract row for the duration of the enclosing
// transaction. Mutators re-read status through this before acting.
func (r *ContractRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	row := q.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, id)
	if err := scanContract(row, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepo) GetByIDWithProject(ctx context.Context, id uuid.UUID) (*models.ContractWithProject, error) {
	var c models.ContractWithProject
	var terms []byte
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, c.project_id, c.buyer_profile_id, c.expert_profile_id, c.engagement_model, c.payment_terms,
		       c.status, c.total_amount, c.escrow_balance, c.released_total, c.start_date,
		       c.nda_required, c.nda_signed_at, c.created_at, c.updated_at,
		       p.title
		FROM contracts c
		JOIN projects p ON p.id = c.project_id
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.ProjectID, &c.BuyerProfileID, &c.ExpertProfileID, &c.EngagementModel, &terms,
		&c.Status, &c.TotalAmount, &c.EscrowBalance, &c.ReleasedTotal, &c.StartDate,
		&c.NDARequired, &c.NDASignedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.ProjectTitle)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(terms, &c.PaymentTerms); err != nil {
		return nil, err
	}
	return &c, nil
}

type ContractFilter struct {
	ProjectID       *uuid.UUID
	BuyerProfileID  *uuid.UUID
	ExpertProfileID *uuid.UUID
	Status          *string
	Limit           int
	Offset          int
}

func (r *ContractRepo) List(ctx context.Context, f ContractFilter) ([]models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ProjectID != nil {
		where = append(where, fmt.Sprintf("project_id = $%d", argIdx))
		args = append(args, *f.ProjectID)
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

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := scanContract(rows, &c); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

func (r *ContractRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string) error {
	_, err := q.Exec(ctx, `UPDATE contracts SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

// UpdateFunds writes both escrow columns together; callers compute the pair
// inside a locked transaction so the conservation invariant holds.
func (r *ContractRepo) UpdateFunds(ctx context.Context, q Querier, id uuid.UUID, escrowBalance, releasedTotal float64) error {
	_, err := q.Exec(ctx, `
		UPDATE contracts SET escrow_balance = $1, released_total = $2, updated_at = now() WHERE id = $3
	`, escrowBalance, releasedTotal, id)
	return err
}

func (r *ContractRepo) UpdateTerms(ctx context.Context, q Querier, id uuid.UUID, terms models.PaymentTerms) error {
	data, err := json.Marshal(terms)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `UPDATE contracts SET payment_terms = $1, updated_at = now() WHERE id = $2`, data, id)
	return err
}

func (r *ContractRepo) SetStartDate(ctx context.Context, q Querier, id uuid.UUID, at time.Time) error {
	_, err := q.Exec(ctx, `UPDATE contracts SET start_date = $1, updated_at = now() WHERE id = $2`, at, id)
	return err
}

func (r *ContractRepo) SetNDARequired(ctx context.Context, q Querier, id uuid.UUID, required bool) error {
	_, err := q.Exec(ctx, `UPDATE contracts SET nda_required = $1, updated_at = now() WHERE id = $2`, required, id)
	return err
}

func (r *ContractRepo) SetNDASignedAt(ctx context.Context, q Querier, id uuid.UUID, at time.Time) error {
	_, err := q.Exec(ctx, `UPDATE contracts SET nda_signed_at = $1, updated_at = now() WHERE id = $2`, at, id)
	return err
}

// HasOpenContract reports whether an active or pending contract already exists
// for the (project, expert) pair.
func (r *ContractRepo) HasOpenContract(ctx context.Context, projectID, expertProfileID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM contracts
			WHERE project_id = $1 AND expert_profile_id = $2 AND status IN ('pending', 'active')
		)
	`, projectID, expertProfileID).Scan(&exists)
	return exists, err
}

// ListPendingUnsignedOlderThan returns pending contracts created before the
// cutoff whose service agreement is still unsigned, for worker reminders.
func (r *ContractRepo) ListPendingUnsignedOlderThan(ctx context.Context, ageSeconds int) ([]models.Contract, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE status = 'pending' AND created_at < now() - ($1 || ' seconds')::interval
	`, fmt.Sprintf("%d", ageSeconds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := scanContract(rows, &c); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}
