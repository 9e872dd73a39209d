package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/http/dto"
	"github.com/expert-marketplace/backend/internal/middleware"
	"github.com/expert-marketplace/backend/internal/repositories"
	"github.com/expert-marketplace/backend/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	log            *zap.Logger
}

func NewProjectHandler(projectService *services.ProjectService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, log: log}
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	project, err := h.projectService.Create(c.Context(), middleware.GetIdentity(c), services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, project)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid project id")
	}
	project, err := h.projectService.Get(c.Context(), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, project)
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	filter := repositories.ProjectFilter{Limit: 20}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := c.Query("buyer_profile_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.BuyerProfileID = &id
		}
	}

	projects, err := h.projectService.List(c.Context(), filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, projects)
}
