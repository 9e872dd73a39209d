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

type WorkHandler struct {
	workService *services.WorkService
	log         *zap.Logger
}

func NewWorkHandler(workService *services.WorkService, log *zap.Logger) *WorkHandler {
	return &WorkHandler{workService: workService, log: log}
}

func toEvidenceInput(r dto.EvidenceRequest) services.EvidenceInput {
	in := services.EvidenceInput{Links: r.Links}
	for _, a := range r.Attachments {
		in.Attachments = append(in.Attachments, services.AttachmentInput{
			Name:          a.Name,
			ContentBase64: a.ContentBase64,
		})
	}
	return in
}

func (h *WorkHandler) SubmitWorkLog(c *fiber.Ctx) error {
	var req dto.SubmitWorkLogRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return badRequest(c, "invalid contract_id")
	}

	w, err := h.workService.SubmitWorkLog(c.Context(), middleware.GetIdentity(c), services.SubmitWorkLogInput{
		ContractID:      contractID,
		Description:     req.Description,
		Checklist:       req.Checklist,
		RequestedAmount: req.RequestedAmount,
		Evidence:        toEvidenceInput(req.Evidence),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, w)
}

func (h *WorkHandler) UpdateWorkLog(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid work log id")
	}
	var req dto.UpdateWorkLogRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	input := services.UpdateWorkLogInput{
		Description:     req.Description,
		Checklist:       req.Checklist,
		RequestedAmount: req.RequestedAmount,
	}
	if req.Evidence != nil {
		ev := toEvidenceInput(*req.Evidence)
		input.Evidence = &ev
	}

	w, err := h.workService.UpdateWorkLog(c.Context(), middleware.GetIdentity(c), id, input)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, w)
}

func (h *WorkHandler) GetWorkLog(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid work log id")
	}
	w, err := h.workService.GetWorkLog(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, w)
}

func (h *WorkHandler) ListWorkLogs(c *fiber.Ctx) error {
	filter := repositories.WorkLogFilter{Limit: 20}
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
	if v := c.Query("log_type"); v != "" {
		filter.LogType = &v
	}
	if v := c.Query("contract_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.ContractID = &id
		}
	}

	logs, err := h.workService.ListWorkLogs(c.Context(), middleware.GetIdentity(c), filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, logs)
}

// UpdateWorkLogStatus is the review endpoint for sprint, milestone and
// daily-log units: {"status": "approved"|"rejected"}.
func (h *WorkHandler) UpdateWorkLogStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid work log id")
	}
	var req dto.UpdateWorkLogStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Status != "approved" && req.Status != "rejected" {
		return badRequest(c, "status must be approved or rejected")
	}

	w, err := h.workService.ReviewWorkLog(c.Context(), middleware.GetIdentity(c), id, services.ReviewInput{
		Approve:        req.Status == "approved",
		Comment:        req.Comment,
		ApprovedAmount: req.ApprovedAmount,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, w)
}

func (h *WorkHandler) SubmitDaySummary(c *fiber.Ctx) error {
	var req dto.SubmitDaySummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return badRequest(c, "invalid contract_id")
	}

	summary, err := h.workService.SubmitDaySummary(c.Context(), middleware.GetIdentity(c), services.SubmitDaySummaryInput{
		ContractID: contractID,
		Summary:    req.Summary,
		Evidence:   toEvidenceInput(req.Evidence),
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, summary)
}

func (h *WorkHandler) UpdateDaySummary(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid day summary id")
	}
	var req dto.UpdateDaySummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	input := services.UpdateDaySummaryInput{Summary: req.Summary}
	if req.Evidence != nil {
		ev := toEvidenceInput(*req.Evidence)
		input.Evidence = &ev
	}

	summary, err := h.workService.UpdateDaySummary(c.Context(), middleware.GetIdentity(c), id, input)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, summary)
}

func (h *WorkHandler) GetDaySummary(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid day summary id")
	}
	summary, err := h.workService.GetDaySummary(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, summary)
}

func (h *WorkHandler) ListDaySummaries(c *fiber.Ctx) error {
	filter := repositories.DaySummaryFilter{Limit: 20}
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

	summaries, err := h.workService.ListDaySummaries(c.Context(), middleware.GetIdentity(c), filter)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, summaries)
}

func (h *WorkHandler) reviewDaySummary(c *fiber.Ctx, approve bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid day summary id")
	}
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "invalid request body")
	}

	summary, err := h.workService.ReviewDaySummary(c.Context(), middleware.GetIdentity(c), id, services.ReviewInput{
		Approve: approve,
		Comment: req.Comment,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, summary)
}

func (h *WorkHandler) ApproveDaySummary(c *fiber.Ctx) error { return h.reviewDaySummary(c, true) }
func (h *WorkHandler) RejectDaySummary(c *fiber.Ctx) error  { return h.reviewDaySummary(c, false) }
