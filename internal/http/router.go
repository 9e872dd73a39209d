package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/config"
	"github.com/expert-marketplace/backend/internal/http/handlers"
	"github.com/expert-marketplace/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	profileHandler *handlers.ProfileHandler,
	projectHandler *handlers.ProjectHandler,
	contractHandler *handlers.ContractHandler,
	documentHandler *handlers.DocumentHandler,
	workHandler *handlers.WorkHandler,
	timeEntryHandler *handlers.TimeEntryHandler,
	invoiceHandler *handlers.InvoiceHandler,
	invitationHandler *handlers.InvitationHandler,
	proposalHandler *handlers.ProposalHandler,
	disputeHandler *handlers.DisputeHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// All resource endpoints require an authenticated profile.
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Profile
	protected.Get("/me", profileHandler.Me)

	// Projects
	protected.Post("/projects", projectHandler.Create)
	protected.Get("/projects", projectHandler.List)
	protected.Get("/projects/:id", projectHandler.Get)

	// Contracts
	protected.Post("/contracts", contractHandler.Create)
	protected.Get("/contracts", contractHandler.List)
	protected.Get("/contracts/:id", contractHandler.Get)
	protected.Post("/contracts/:id/accept-and-sign-nda", contractHandler.AcceptAndSign)
	protected.Post("/contracts/:id/decline", contractHandler.Decline)
	protected.Post("/contracts/:id/cancel", contractHandler.Cancel)
	protected.Post("/contracts/:id/fund", contractHandler.Fund)
	protected.Post("/contracts/:id/complete", contractHandler.Complete)
	protected.Get("/contracts/:id/events", contractHandler.GetEvents)
	protected.Get("/contracts/:id/escrow", contractHandler.GetEscrowLedger)
	protected.Get("/contracts/:id/disputes", disputeHandler.ListByContract)

	// Contract documents
	protected.Get("/contracts/:id/documents", documentHandler.ListByContract)
	protected.Post("/contracts/:id/documents/nda", documentHandler.CreateNDA)
	protected.Get("/contracts/:id/documents/:docId", documentHandler.Get)
	protected.Patch("/contracts/:id/documents/:docId", documentHandler.UpdateContent)
	protected.Post("/contracts/:id/documents/:docId/sign", documentHandler.Sign)

	// Day work summaries (daily engagements)
	protected.Post("/day-work-summaries", workHandler.SubmitDaySummary)
	protected.Get("/day-work-summaries", workHandler.ListDaySummaries)
	protected.Get("/day-work-summaries/:id", workHandler.GetDaySummary)
	protected.Patch("/day-work-summaries/:id", workHandler.UpdateDaySummary)
	protected.Post("/day-work-summaries/:id/approve", workHandler.ApproveDaySummary)
	protected.Post("/day-work-summaries/:id/reject", workHandler.RejectDaySummary)

	// Work logs (sprint, milestone, daily-log units)
	protected.Post("/work-logs", workHandler.SubmitWorkLog)
	protected.Get("/work-logs", workHandler.ListWorkLogs)
	protected.Get("/work-logs/:id", workHandler.GetWorkLog)
	protected.Patch("/work-logs/:id", workHandler.UpdateWorkLog)
	protected.Patch("/work-logs/:id/status", workHandler.UpdateWorkLogStatus)

	// Time entries (hourly engagements)
	protected.Post("/time-entries", timeEntryHandler.Create)
	protected.Get("/time-entries", timeEntryHandler.List)
	protected.Get("/time-entries/:id", timeEntryHandler.Get)
	protected.Patch("/time-entries/:id", timeEntryHandler.Update)
	protected.Post("/time-entries/:id/approve", timeEntryHandler.Approve)
	protected.Post("/time-entries/:id/reject", timeEntryHandler.Reject)

	// Invoices
	protected.Get("/invoices", invoiceHandler.List)
	protected.Get("/invoices/:id", invoiceHandler.Get)
	protected.Patch("/invoices/:id/pay", invoiceHandler.Pay)

	// Invitations
	protected.Post("/invitations", invitationHandler.Create)
	protected.Get("/invitations", invitationHandler.List)
	protected.Get("/invitations/:id", invitationHandler.Get)
	protected.Post("/invitations/:id", invitationHandler.Respond)

	// Proposals
	protected.Post("/proposals", proposalHandler.Submit)
	protected.Get("/proposals", proposalHandler.List)
	protected.Get("/proposals/:id", proposalHandler.Get)
	protected.Patch("/proposals/:id/status", proposalHandler.Review)

	// Disputes
	protected.Post("/disputes", disputeHandler.Raise)
	protected.Get("/disputes/:id", disputeHandler.Get)

	// Admin
	admin := protected.Group("/admin", middleware.AdminMiddleware())
	admin.Patch("/invoices/:id/void", invoiceHandler.Void)
	admin.Post("/disputes/:id/resolve", disputeHandler.Resolve)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
