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

const daySummaryColumns = `id, contract_id, expert_profile_id, work_date, status, summary, evidence,
	       review_comment, reviewed_at, created_at, updated_at`

type DaySummaryRepo struct {
	pool *pgxpool.Pool
}

func NewDaySummaryRepo(pool *pgxpool.Pool) *DaySummaryRepo {
	return &DaySummaryRepo{pool: pool}
}

func (r *DaySummaryRepo) Create(ctx context.Context, q Querier, s *models.DayWorkSummary) error {
	evidence, err := json.Marshal(s.Evidence)
	if err != nil {
		return err
	}
	return q.QueryRow(ctx, `
		INSERT INTO day_work_summaries (contract_id, expert_profile_id, work_date, status, summary, evidence)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, s.ContractID, s.ExpertProfileID, s.WorkDate, s.Status, s.Summary, evidence,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func scanDaySummary(row interface{ Scan(...any) error }, s *models.DayWorkSummary) error {
	var evidence []byte
	if err := row.Scan(&s.ID, &s.ContractID, &s.ExpertProfileID, &s.WorkDate, &s.Status, &s.Summary, &evidence,
		&s.ReviewComment, &s.ReviewedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	return json.Unmarshal(evidence, &s.Evidence)
}

func (r *DaySummaryRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.DayWorkSummary, error) {
	var s models.DayWorkSummary
	row := q.QueryRow(ctx, `SELECT `+daySummaryColumns+` FROM day_work_summaries WHERE id = $1`, id)
	if err := scanDaySummary(row, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *DaySummaryRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.DayWorkSummary, error) {
	var s models.DayWorkSummary
	row := q.QueryRow(ctx, `SELECT `+daySummaryColumns+` FROM day_work_summaries WHERE id = $1 FOR UPDATE`, id)
	if err := scanDaySummary(row, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ExistsForDay backs the one-submission-per-contract-per-day rule; the DB
// unique index catches the race the pre-check misses.
func (r *DaySummaryRepo) ExistsForDay(ctx context.Context, contractID uuid.UUID, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM day_work_summaries WHERE contract_id = $1 AND work_date = $2 AND status <> 'rejected')
	`, contractID, day).Scan(&exists)
	return exists, err
}

type DaySummaryFilter struct {
	ContractID      *uuid.UUID
	ExpertProfileID *uuid.UUID
	Status          *string
	Limit           int
	Offset          int
}

func (r *DaySummaryRepo) List(ctx context.Context, f DaySummaryFilter) ([]models.DayWorkSummary, error) {
	query := `SELECT ` + daySummaryColumns + ` FROM day_work_summaries`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ContractID != nil {
		where = append(where, fmt.Sprintf("contract_id = $%d", argIdx))
		args = append(args, *f.ContractID)
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
	query += fmt.Sprintf(" ORDER BY work_date DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.DayWorkSummary
	for rows.Next() {
		var s models.DayWorkSummary
		if err := scanDaySummary(rows, &s); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (r *DaySummaryRepo) Update(ctx context.Context, q Querier, s *models.DayWorkSummary) error {
	evidence, err := json.Marshal(s.Evidence)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		UPDATE day_work_summaries SET summary = $1, evidence = $2, updated_at = now() WHERE id = $3
	`, s.Summary, evidence, s.ID)
	return err
}

func (r *DaySummaryRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string, comment *string, reviewedAt time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE day_work_summaries SET status = $1, review_comment = $2, reviewed_at = $3, updated_at = now() WHERE id = $4
	`, status, comment, reviewedAt, id)
	return err
}
