package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/middleware"
	"github.com/expert-marketplace/backend/internal/repositories"
	"github.com/expert-marketplace/backend/internal/services"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
	log            *zap.Logger
}

func NewInvoiceHandler(invoiceService *services.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, log: log}
}

func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid invoice id")
	}

	view, err := h.invoiceService.Get(c.Context(), middleware.GetIdentity(c), id, c.Query("currency"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, view)
}

func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	filter := repositories.InvoiceFilter{Limit: 20}
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

	views, err := h.invoiceService.List(c.Context(), middleware.GetIdentity(c), filter, c.Query("currency"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, views)
}

func (h *InvoiceHandler) Pay(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid invoice id")
	}
	inv, err := h.invoiceService.Pay(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, inv)
}

func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid invoice id")
	}
	inv, err := h.invoiceService.Void(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, inv)
}
