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

type TimeEntryHandler struct {
	timeEntryService *services.TimeEntryService
	log              *zap.Logger
}

func NewTimeEntryHandler(timeEntryService *services.TimeEntryService, log *zap.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{timeEntryService: timeEntryService, log: log}
}

func (h *TimeEntryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTimeEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return badRequest(c, "invalid contract_id")
	}

	entry, err := h.timeEntryService.Create(c.Context(), middleware.GetIdentity(c), services.CreateTimeEntryInput{
		ContractID:  contractID,
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
		Description: req.Description,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, entry)
}

func (h *TimeEntryHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid time entry id")
	}
	var req dto.UpdateTimeEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	entry, err := h.timeEntryService.Update(c.Context(), middleware.GetIdentity(c), id, services.UpdateTimeEntryInput{
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
		Description: req.Description,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, entry)
}

func (h *TimeEntryHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid time entry id")
	}
	entry, err := h.timeEntryService.Get(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, entry)
}

func (h *TimeEntryHandler) List(c *fiber.Ctx) error {
	filter := repositories.TimeEntryFilter{Limit: 20}
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
	if v := c.Query("contract_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.ContractID = &id
		}
	}

	entries, err := h.timeEntryService.List(c.Context(), middleware.GetIdentity(c), filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, entries)
}

func (h *TimeEntryHandler) review(c *fiber.Ctx, approve bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid time entry id")
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "invalid request body")
	}

	entry, err := h.timeEntryService.Review(c.Context(), middleware.GetIdentity(c), id, services.ReviewInput{
		Approve: approve,
		Comment: req.Comment,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, entry)
}

func (h *TimeEntryHandler) Approve(c *fiber.Ctx) error { return h.review(c, true) }
func (h *TimeEntryHandler) Reject(c *fiber.Ctx) error  { return h.review(c, false) }
