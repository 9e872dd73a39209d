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

type ProposalHandler struct {
	proposalService *services.ProposalService
	log             *zap.Logger
}

func NewProposalHandler(proposalService *services.ProposalService, log *zap.Logger) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService, log: log}
}

func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return badRequest(c, "invalid project_id")
	}

	proposal, err := h.proposalService.Submit(c.Context(), middleware.GetIdentity(c), services.SubmitProposalInput{
		ProjectID:       projectID,
		EngagementModel: req.EngagementModel,
		PaymentTerms:    req.PaymentTerms.Terms(req.EngagementModel),
		CoverLetter:     req.CoverLetter,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, proposal)
}

func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid proposal id")
	}
	proposal, err := h.proposalService.Get(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, proposal)
}

func (h *ProposalHandler) List(c *fiber.Ctx) error {
	filter := repositories.ProposalFilter{Limit: 20}
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

	proposals, err := h.proposalService.List(c.Context(), middleware.GetIdentity(c), filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, proposals)
}

// Review accepts or rejects a pending proposal. Acceptance converts it into
// a pending contract carrying the proposed terms.
func (h *ProposalHandler) Review(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid proposal id")
	}
	var req dto.ReviewProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Status != "accepted" && req.Status != "rejected" {
		return badRequest(c, "status must be accepted or rejected")
	}

	proposal, contract, err := h.proposalService.Review(c.Context(), middleware.GetIdentity(c), id, req.Status == "accepted")
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, fiber.Map{"proposal": proposal, "contract": contract})
}
