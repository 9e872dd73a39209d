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

const invitationColumns = `id, project_id, buyer_profile_id, expert_profile_id, engagement_model, payment_terms,
	       message, nda_required, status, responded_at, created_at, updated_at`

type InvitationRepo struct {
	pool *pgxpool.Pool
}

func NewInvitationRepo(pool *pgxpool.Pool) *InvitationRepo {
	return &InvitationRepo{pool: pool}
}

func (r *InvitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	terms, err := json.Marshal(inv.PaymentTerms)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO invitations (project_id, buyer_profile_id, expert_profile_id, engagement_model, payment_terms,
		                         message, nda_required, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, inv.ProjectID, inv.BuyerProfileID, inv.ExpertProfileID, inv.EngagementModel, terms,
		inv.Message, inv.NDARequired, inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func scanInvitation(row interface{ Scan(...any) error }, inv *models.Invitation) error {
	var terms []byte
	if err := row.Scan(&inv.ID, &inv.ProjectID, &inv.BuyerProfileID, &inv.ExpertProfileID, &inv.EngagementModel, &terms,
		&inv.Message, &inv.NDARequired, &inv.Status, &inv.RespondedAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return err
	}
	return json.Unmarshal(terms, &inv.PaymentTerms)
}

func (r *InvitationRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	row := q.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	if err := scanInvitation(row, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByIDForUpdate locks the invitation row so concurrent accept attempts
// serialize inside the conversion transaction.
func (r *InvitationRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	row := q.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1 FOR UPDATE`, id)
	if err := scanInvitation(row, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// HasPending backs the one-pending-invitation-per-(project, expert) rule.
func (r *InvitationRepo) HasPending(ctx context.Context, projectID, expertProfileID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM invitations WHERE project_id = $1 AND expert_profile_id = $2 AND status = 'pending')
	`, projectID, expertProfileID).Scan(&exists)
	return exists, err
}

type InvitationFilter struct {
	ProjectID       *uuid.UUID
	BuyerProfileID  *uuid.UUID
	ExpertProfileID *uuid.UUID
	Status          *string
	Limit           int
	Offset          int
}

func (r *InvitationRepo) List(ctx context.Context, f InvitationFilter) ([]models.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations`
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

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := scanInvitation(rows, &inv); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, nil
}

func (r *InvitationRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string, respondedAt time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE invitations SET status = $1, responded_at = $2, updated_at = now() WHERE id = $3
	`, status, respondedAt, id)
	return err
}

// ListStalePending returns pending invitations older than the expiry window,
// declined automatically by the worker.
func (r *InvitationRepo) ListStalePending(ctx context.Context, ageSeconds int) ([]models.Invitation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE status = 'pending' AND created_at < now() - ($1 || ' seconds')::interval
	`, fmt.Sprintf("%d", ageSeconds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := scanInvitation(rows, &inv); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, nil
}
