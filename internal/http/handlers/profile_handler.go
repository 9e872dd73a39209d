package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/apperr"
	"github.com/expert-marketplace/backend/internal/middleware"
	"github.com/expert-marketplace/backend/internal/repositories"
)

type ProfileHandler struct {
	profileRepo *repositories.ProfileRepo
	log         *zap.Logger
}

func NewProfileHandler(profileRepo *repositories.ProfileRepo, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, log: log}
}

// Me returns the caller's profile.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	ident := middleware.GetIdentity(c)
	profile, err := h.profileRepo.GetByID(c.Context(), ident.ProfileID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return fail(c, h.log, apperr.NotFound("profile not found"))
		}
		return fail(c, h.log, err)
	}
	return ok(c, profile)
}
