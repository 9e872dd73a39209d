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

type ContractHandler struct {
	contractService *services.ContractService
	log             *zap.Logger
}

func NewContractHandler(contractService *services.ContractService, log *zap.Logger) *ContractHandler {
	return &ContractHandler{contractService: contractService, log: log}
}

func (h *ContractHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateContractRequest
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

	ident := middleware.GetIdentity(c)
	contract, err := h.contractService.Create(c.Context(), ident, services.CreateContractInput{
		ProjectID:       projectID,
		ExpertProfileID: expertID,
		EngagementModel: req.EngagementModel,
		PaymentTerms:    req.PaymentTerms.Terms(req.EngagementModel),
		NDARequired:     req.NDARequired,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, contract)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}

	contract, err := h.contractService.Get(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, contract)
}

func (h *ContractHandler) List(c *fiber.Ctx) error {
	filter := repositories.ContractFilter{Limit: 20}
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

	contracts, err := h.contractService.List(c.Context(), middleware.GetIdentity(c), filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, contracts)
}

func (h *ContractHandler) Decline(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	if err := h.contractService.Decline(c.Context(), middleware.GetIdentity(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, nil)
}

func (h *ContractHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	if err := h.contractService.Cancel(c.Context(), middleware.GetIdentity(c), id); err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, nil)
}

func (h *ContractHandler) Fund(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	var req dto.FundContractRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	contract, err := h.contractService.Fund(c.Context(), middleware.GetIdentity(c), id, req.Amount)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, contract)
}

func (h *ContractHandler) Complete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	contract, err := h.contractService.Complete(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, contract)
}

// AcceptAndSign handles the expert's one-step accept: signs the NDA when one
// is required, then the service agreement.
func (h *ContractHandler) AcceptAndSign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	var req dto.AcceptContractRequest
	if err := c.BodyParser(&req); err != nil || req.SignatureName == "" {
		return badRequest(c, "signature_name is required")
	}

	contract, err := h.contractService.AcceptAndSign(c.Context(), middleware.GetIdentity(c), id, req.SignatureName, c.IP())
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, contract)
}

func (h *ContractHandler) GetEvents(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	events, err := h.contractService.GetEvents(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, events)
}

func (h *ContractHandler) GetEscrowLedger(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	entries, err := h.contractService.ListEscrowEntries(c.Context(), middleware.GetIdentity(c), id, limit, offset)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, entries)
}
