package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/http/dto"
	"github.com/expert-marketplace/backend/internal/middleware"
	"github.com/expert-marketplace/backend/internal/services"
)

type DisputeHandler struct {
	disputeService *services.DisputeService
	log            *zap.Logger
}

func NewDisputeHandler(disputeService *services.DisputeService, log *zap.Logger) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService, log: log}
}

func (h *DisputeHandler) Raise(c *fiber.Ctx) error {
	var req dto.RaiseDisputeRequest
	if err := c.BodyParser(&req); err != nil || req.Reason == "" {
		return badRequest(c, "reason is required")
	}
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return badRequest(c, "invalid contract_id")
	}

	dispute, err := h.disputeService.Raise(c.Context(), middleware.GetIdentity(c), contractID, req.Reason)
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, dispute)
}

func (h *DisputeHandler) ListByContract(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	disputes, err := h.disputeService.ListByContract(c.Context(), middleware.GetIdentity(c), contractID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, disputes)
}

func (h *DisputeHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid dispute id")
	}
	dispute, err := h.disputeService.Get(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, dispute)
}

func (h *DisputeHandler) Resolve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid dispute id")
	}
	var req dto.ResolveDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	dispute, err := h.disputeService.Resolve(c.Context(), middleware.GetIdentity(c), id, services.ResolveDisputeInput{
		Resolution:     req.Resolution,
		Note:           req.Note,
		WriteOffAmount: req.WriteOffAmount,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, dispute)
}
