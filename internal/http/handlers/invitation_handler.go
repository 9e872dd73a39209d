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

type InvitationHandler struct {
	invitationService *services.InvitationService
	log               *zap.Logger
}

func NewInvitationHandler(invitationService *services.InvitationService, log *zap.Logger) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService, log: log}
}

func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return badRequest(c, "invalid project_id")
	}
	expertID, err := uuid.Parse(req.ExpertProfileID)
	if err != nil {
		return badRequest(c, "invalid expert_profile_id")
	}

	inv, err := h.invitationService.Create(c.Context(), middleware.GetIdentity(c), services.CreateInvitationInput{
		ProjectID:       projectID,
		ExpertProfileID: expertID,
		EngagementModel: req.EngagementModel,
		PaymentTerms:    req.PaymentTerms.Terms(req.EngagementModel),
		Message:         req.Message,
		NDARequired:     req.NDARequired,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, inv)
}

func (h *InvitationHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid invitation id")
	}
	inv, err := h.invitationService.Get(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, inv)
}

func (h *InvitationHandler) List(c *fiber.Ctx) error {
	filter := repositories.InvitationFilter{Limit: 20}
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
	if v := c.Query("project_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.ProjectID = &id
		}
	}

	invitations, err := h.invitationService.List(c.Context(), middleware.GetIdentity(c), filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, invitations)
}

// Respond accepts or declines a pending invitation. Acceptance returns the
// contract created from the invitation's terms alongside the invitation.
func (h *InvitationHandler) Respond(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid invitation id")
	}
	var req dto.RespondInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Status != "accepted" && req.Status != "declined" {
		return badRequest(c, "status must be accepted or declined")
	}

	inv, contract, err := h.invitationService.Respond(c.Context(), middleware.GetIdentity(c), id, req.Status == "accepted")
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, fiber.Map{"invitation": inv, "contract": contract})
}
