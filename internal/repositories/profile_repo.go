package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expert-marketplace/backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, role, display_name, email, created_at
		FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.Role, &p.DisplayName, &p.Email, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDisplayNames resolves both party names in one round trip for document
// generation.
func (r *ProfileRepo) GetDisplayNames(ctx context.Context, buyerID, expertID uuid.UUID) (string, string, error) {
	var buyerName, expertName string
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT display_name FROM profiles WHERE id = $1),
			(SELECT display_name FROM profiles WHERE id = $2)
	`, buyerID, expertID).Scan(&buyerName, &expertName)
	return buyerName, expertName, err
}
