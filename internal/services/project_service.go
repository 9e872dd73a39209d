package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/apperr"
	"github.com/expert-marketplace/backend/internal/auth"
	"github.com/expert-marketplace/backend/internal/models"
	"github.com/expert-marketplace/backend/internal/rbac"
	"github.com/expert-marketplace/backend/internal/repositories"
)

type ProjectService struct {
	pool        *pgxpool.Pool
	projectRepo *repositories.ProjectRepo
	auditRepo   *repositories.AuditRepo
	log         *zap.Logger
}

func NewProjectService(pool *pgxpool.Pool, projectRepo *repositories.ProjectRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *ProjectService {
	return &ProjectService{pool: pool, projectRepo: projectRepo, auditRepo: auditRepo, log: log}
}

type CreateProjectInput struct {
	Title       string
	Description *string
	Budget      float64
}

func (s *ProjectService) Create(ctx context.Context, ident auth.Identity, input CreateProjectInput) (*models.Project, error) {
	if ident.Role != rbac.RoleBuyer {
		return nil, apperr.Forbidden("only buyers can create projects")
	}
	if input.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	if input.Budget < 0 {
		return nil, apperr.Validation("budget must not be negative")
	}

	p := &models.Project{
		BuyerProfileID: ident.ProfileID,
		Title:          input.Title,
		Description:    input.Description,
		Budget:         input.Budget,
		Status:         models.ProjectStatusOpen,
	}
	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorProfileID: &ident.ProfileID,
		ActorType:      "user",
		Action:         "project_created",
		EntityType:     "project",
		EntityID:       &p.ID,
	})
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := s.projectRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("project not found")
		}
		return nil, err
	}
	return p, nil
}

// List is open to every authenticated caller; experts browse projects to
// propose on them.
func (s *ProjectService) List(ctx context.Context, f repositories.ProjectFilter) ([]models.Project, error) {
	return s.projectRepo.List(ctx, f)
}
