package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

const projectColumns = `id, buyer_profile_id, title, description, budget, status, created_at, updated_at`

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (buyer_profile_id, title, description, budget, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.BuyerProfileID, p.Title, p.Description, p.Budget, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func scanProject(row interface{ Scan(...any) error }, p *models.Project) error {
	return row.Scan(&p.ID, &p.BuyerProfileID, &p.Title, &p.Description, &p.Budget, &p.Status, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	row := q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if err := scanProject(row, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type ProjectFilter struct {
	BuyerProfileID *uuid.UUID
	Status         *string
	Limit          int
	Offset         int
}

func (r *ProjectRepo) List(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.BuyerProfileID != nil {
		where = append(where, fmt.Sprintf("buyer_profile_id = $%d", argIdx))
		args = append(args, *f.BuyerProfileID)
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

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (r *ProjectRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string) error {
	_, err := q.Exec(ctx, `UPDATE projects SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}
