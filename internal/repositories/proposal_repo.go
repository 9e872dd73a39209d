package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

const proposalColumns = `id, project_id, expert_profile_id, engagement_model, payment_terms,
	       cover_letter, status, created_at, updated_at`

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

// Upsert inserts or, for a repeat (project, expert) submission, updates the
// existing proposal in place and resets it to pending.
func (r *ProposalRepo) Upsert(ctx context.Context, p *models.Proposal) error {
	terms, err := json.Marshal(p.PaymentTerms)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO proposals (project_id, expert_profile_id, engagement_model, payment_terms, cover_letter, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (project_id, expert_profile_id) DO UPDATE SET
			engagement_model = EXCLUDED.engagement_model,
			payment_terms = EXCLUDED.payment_terms,
			cover_letter = EXCLUDED.cover_letter,
			status = 'pending',
			updated_at = now()
		RETURNING id, status, created_at, updated_at
	`, p.ProjectID, p.ExpertProfileID, p.EngagementModel, terms, p.CoverLetter, p.Status,
	).Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
}

func scanProposal(row interface{ Scan(...any) error }, p *models.Proposal) error {
	var terms []byte
	if err := row.Scan(&p.ID, &p.ProjectID, &p.ExpertProfileID, &p.EngagementModel, &terms,
		&p.CoverLetter, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	return json.Unmarshal(terms, &p.PaymentTerms)
}

func (r *ProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	row := r.pool.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	if err := scanProposal(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type ProposalFilter struct {
	ProjectID       *uuid.UUID
	ExpertProfileID *uuid.UUID
	Status          *string
	Limit           int
	Offset          int
}

func (r *ProposalRepo) List(ctx context.Context, f ProposalFilter) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ProjectID != nil {
		where = append(where, fmt.Sprintf("project_id = $%d", argIdx))
		args = append(args, *f.ProjectID)
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
	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		var p models.Proposal
		if err := scanProposal(rows, &p); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

func (r *ProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE proposals SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}
