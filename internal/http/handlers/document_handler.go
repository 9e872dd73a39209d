package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/http/dto"
	"github.com/expert-marketplace/backend/internal/middleware"
	"github.com/expert-marketplace/backend/internal/services"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	log             *zap.Logger
}

func NewDocumentHandler(documentService *services.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, log: log}
}

func (h *DocumentHandler) ListByContract(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	docs, err := h.documentService.ListByContract(c.Context(), middleware.GetIdentity(c), contractID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, docs)
}

func (h *DocumentHandler) CreateNDA(c *fiber.Ctx) error {
	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract id")
	}
	doc, err := h.documentService.CreateNDA(c.Context(), middleware.GetIdentity(c), contractID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return created(c, doc)
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("docId"))
	if err != nil {
		return badRequest(c, "invalid document id")
	}
	doc, err := h.documentService.Get(c.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, doc)
}

func (h *DocumentHandler) Sign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("docId"))
	if err != nil {
		return badRequest(c, "invalid document id")
	}
	var req dto.SignDocumentRequest
	if err := c.BodyParser(&req); err != nil || req.SignatureName == "" {
		return badRequest(c, "signature_name is required")
	}

	doc, err := h.documentService.Sign(c.Context(), middleware.GetIdentity(c), id, req.SignatureName, c.IP())
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, doc)
}

func (h *DocumentHandler) UpdateContent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("docId"))
	if err != nil {
		return badRequest(c, "invalid document id")
	}
	var req dto.UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	doc, err := h.documentService.UpdateContent(c.Context(), middleware.GetIdentity(c), id, req.Content)
	if err != nil {
		return fail(c, h.log, err)
	}
	return ok(c, doc)
}
