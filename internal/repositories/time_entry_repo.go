package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

const timeEntryColumns = `id, contract_id, expert_profile_id, started_at, ended_at, minutes, description,
	       amount, status, review_comment, reviewed_at, created_at, updated_at`

type TimeEntryRepo struct {
	pool *pgxpool.Pool
}

func NewTimeEntryRepo(pool *pgxpool.Pool) *TimeEntryRepo {
	return &TimeEntryRepo{pool: pool}
}

func (r *TimeEntryRepo) Create(ctx context.Context, q Querier, t *models.TimeEntry) error {
	return q.QueryRow(ctx, `
		INSERT INTO time_entries (contract_id, expert_profile_id, started_at, ended_at, minutes, description, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, t.ContractID, t.ExpertProfileID, t.StartedAt, t.EndedAt, t.Minutes, t.Description, t.Amount, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func scanTimeEntry(row interface{ Scan(...any) error }, t *models.TimeEntry) error {
	return row.Scan(&t.ID, &t.ContractID, &t.ExpertProfileID, &t.StartedAt, &t.EndedAt, &t.Minutes, &t.Description,
		&t.Amount, &t.Status, &t.ReviewComment, &t.ReviewedAt, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TimeEntryRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.TimeEntry, error) {
	var t models.TimeEntry
	row := q.QueryRow(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id = $1`, id)
	if err := scanTimeEntry(row, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TimeEntryRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.TimeEntry, error) {
	var t models.TimeEntry
	row := q.QueryRow(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id = $1 FOR UPDATE`, id)
	if err := scanTimeEntry(row, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// HasOverlap performs the half-open interval check [start, end) against every
// non-rejected entry for the same contract+expert, excluding excludeID when
// editing an existing entry.
func (r *TimeEntryRepo) HasOverlap(ctx context.Context, contractID, expertProfileID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM time_entries
			WHERE contract_id = $1 AND expert_profile_id = $2
			  AND status != 'rejected'
			  AND started_at < $4 AND $3 < ended_at
	`
	args := []any{contractID, expertProfileID, start, end}
	if excludeID != nil {
		query += ` AND id != $5`
		args = append(args, *excludeID)
	}
	query += `)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, args...).Scan(&exists)
	return exists, err
}

type TimeEntryFilter struct {
	ContractID      *uuid.UUID
	ExpertProfileID *uuid.UUID
	Status          *string
	Limit           int
	Offset          int
}

func (r *TimeEntryRepo) List(ctx context.Context, f TimeEntryFilter) ([]models.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries`
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
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		var t models.TimeEntry
		if err := scanTimeEntry(rows, &t); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, nil
}

func (r *TimeEntryRepo) Update(ctx context.Context, q Querier, t *models.TimeEntry) error {
	_, err := q.Exec(ctx, `
		UPDATE time_entries SET started_at = $1, ended_at = $2, minutes = $3, description = $4, amount = $5, updated_at = now()
		WHERE id = $6
	`, t.StartedAt, t.EndedAt, t.Minutes, t.Description, t.Amount, t.ID)
	return err
}

func (r *TimeEntryRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string, comment *string, reviewedAt time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE time_entries SET status = $1, review_comment = $2, reviewed_at = $3, updated_at = now() WHERE id = $4
	`, status, comment, reviewedAt, id)
	return err
}
