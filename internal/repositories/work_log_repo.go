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

const workLogColumns = `id, contract_id, expert_profile_id, log_type, status, description,
	       checklist, requested_amount, sprint_number, work_date, evidence,
	       review_comment, reviewed_at, created_at, updated_at`

type WorkLogRepo struct {
	pool *pgxpool.Pool
}

func NewWorkLogRepo(pool *pgxpool.Pool) *WorkLogRepo {
	return &WorkLogRepo{pool: pool}
}

func (r *WorkLogRepo) Create(ctx context.Context, q Querier, w *models.WorkLog) error {
	checklist, err := json.Marshal(w.Checklist)
	if err != nil {
		return err
	}
	evidence, err := json.Marshal(w.Evidence)
	if err != nil {
		return err
	}
	return q.QueryRow(ctx, `
		INSERT INTO work_logs (contract_id, expert_profile_id, log_type, status, description,
		                       checklist, requested_amount, sprint_number, work_date, evidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, w.ContractID, w.ExpertProfileID, w.LogType, w.Status, w.Description,
		checklist, w.RequestedAmount, w.SprintNumber, w.WorkDate, evidence,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

func scanWorkLog(row interface{ Scan(...any) error }, w *models.WorkLog) error {
	var checklist, evidence []byte
	if err := row.Scan(&w.ID, &w.ContractID, &w.ExpertProfileID, &w.LogType, &w.Status, &w.Description,
		&checklist, &w.RequestedAmount, &w.SprintNumber, &w.WorkDate, &evidence,
		&w.ReviewComment, &w.ReviewedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return err
	}
	if err := json.Unmarshal(checklist, &w.Checklist); err != nil {
		return err
	}
	return json.Unmarshal(evidence, &w.Evidence)
}

func (r *WorkLogRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.WorkLog, error) {
	var w models.WorkLog
	row := q.QueryRow(ctx, `SELECT `+workLogColumns+` FROM work_logs WHERE id = $1`, id)
	if err := scanWorkLog(row, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkLogRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.WorkLog, error) {
	var w models.WorkLog
	row := q.QueryRow(ctx, `SELECT `+workLogColumns+` FROM work_logs WHERE id = $1 FOR UPDATE`, id)
	if err := scanWorkLog(row, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ExistsForDay reports whether a work log already exists for the contract on
// the given calendar day. The DB unique index is the race backstop.
func (r *WorkLogRepo) ExistsForDay(ctx context.Context, contractID uuid.UUID, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM work_logs WHERE contract_id = $1 AND work_date = $2 AND log_type = 'daily_log' AND status <> 'rejected')
	`, contractID, day).Scan(&exists)
	return exists, err
}

type WorkLogFilter struct {
	ContractID      *uuid.UUID
	ExpertProfileID *uuid.UUID
	LogType         *string
	Status          *string
	Limit           int
	Offset          int
}

func (r *WorkLogRepo) List(ctx context.Context, f WorkLogFilter) ([]models.WorkLog, error) {
	query := `SELECT ` + workLogColumns + ` FROM work_logs`
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
	if f.LogType != nil {
		where = append(where, fmt.Sprintf("log_type = $%d", argIdx))
		args = append(args, *f.LogType)
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

	var logs []models.WorkLog
	for rows.Next() {
		var w models.WorkLog
		if err := scanWorkLog(rows, &w); err != nil {
			return nil, err
		}
		logs = append(logs, w)
	}
	return logs, nil
}

func (r *WorkLogRepo) Update(ctx context.Context, q Querier, w *models.WorkLog) error {
	checklist, err := json.Marshal(w.Checklist)
	if err != nil {
		return err
	}
	evidence, err := json.Marshal(w.Evidence)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		UPDATE work_logs SET description = $1, checklist = $2, requested_amount = $3, evidence = $4, updated_at = now()
		WHERE id = $5
	`, w.Description, checklist, w.RequestedAmount, evidence, w.ID)
	return err
}

func (r *WorkLogRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string, comment *string, reviewedAt time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE work_logs SET status = $1, review_comment = $2, reviewed_at = $3, updated_at = now() WHERE id = $4
	`, status, comment, reviewedAt, id)
	return err
}
