package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/apperr"
	"github.com/expert-marketplace/backend/internal/http/dto"
)

// fail translates a service error into the response envelope. Domain errors
// keep their status and code; anything else becomes an opaque 500.
func fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	if e := apperr.From(err); e != nil {
		return c.Status(e.Status).JSON(dto.ErrorResponse{Error: e.Message, Code: e.Code})
	}
	log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, Code: apperr.CodeValidation})
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(dto.SuccessResponse{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{Success: true, Data: data})
}
