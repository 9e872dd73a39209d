package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/config"
	"github.com/expert-marketplace/backend/internal/db"
	"github.com/expert-marketplace/backend/internal/events"
	apphttp "github.com/expert-marketplace/backend/internal/http"
	"github.com/expert-marketplace/backend/internal/http/handlers"
	"github.com/expert-marketplace/backend/internal/repositories"
	"github.com/expert-marketplace/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	profileRepo := repositories.NewProfileRepo(pool)
	projectRepo := repositories.NewProjectRepo(pool)
	contractRepo := repositories.NewContractRepo(pool)
	docRepo := repositories.NewDocumentRepo(pool)
	workLogRepo := repositories.NewWorkLogRepo(pool)
	dayRepo := repositories.NewDaySummaryRepo(pool)
	timeEntryRepo := repositories.NewTimeEntryRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	invitationRepo := repositories.NewInvitationRepo(pool)
	proposalRepo := repositories.NewProposalRepo(pool)
	disputeRepo := repositories.NewDisputeRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Collaborator clients
	storageClient := services.NewStorageClient(cfg.StorageInternalURL, cfg.EvidenceBucket, log)
	notifyClient := services.NewNotifyClient(cfg.NotifyInternalURL, log)
	currencyClient := services.NewCurrencyClient(cfg.CurrencyInternalURL, log)

	// Services
	documentService := services.NewDocumentService(pool, docRepo, contractRepo, projectRepo, profileRepo, auditRepo, publisher, notifyClient, cfg, log)
	contractService := services.NewContractService(pool, contractRepo, docRepo, projectRepo, profileRepo, escrowRepo, invoiceRepo, auditRepo, documentService, publisher, notifyClient, cfg, log)
	workService := services.NewWorkService(pool, workLogRepo, dayRepo, contractRepo, invoiceRepo, auditRepo, storageClient, publisher, notifyClient, cfg, log)
	timeEntryService := services.NewTimeEntryService(pool, timeEntryRepo, contractRepo, invoiceRepo, auditRepo, workService, publisher, notifyClient, log)
	invoiceService := services.NewInvoiceService(pool, invoiceRepo, contractRepo, escrowRepo, auditRepo, currencyClient, publisher, notifyClient, cfg, log)
	invitationService := services.NewInvitationService(pool, invitationRepo, projectRepo, contractRepo, auditRepo, contractService, publisher, notifyClient, cfg, log)
	proposalService := services.NewProposalService(pool, proposalRepo, projectRepo, contractRepo, auditRepo, contractService, publisher, notifyClient, log)
	disputeService := services.NewDisputeService(pool, disputeRepo, contractRepo, escrowRepo, auditRepo, contractService, publisher, notifyClient, log)
	projectService := services.NewProjectService(pool, projectRepo, auditRepo, log)

	// Handlers
	profileHandler := handlers.NewProfileHandler(profileRepo, log)
	projectHandler := handlers.NewProjectHandler(projectService, log)
	contractHandler := handlers.NewContractHandler(contractService, log)
	documentHandler := handlers.NewDocumentHandler(documentService, log)
	workHandler := handlers.NewWorkHandler(workService, log)
	timeEntryHandler := handlers.NewTimeEntryHandler(timeEntryService, log)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, log)
	invitationHandler := handlers.NewInvitationHandler(invitationService, log)
	proposalHandler := handlers.NewProposalHandler(proposalService, log)
	disputeHandler := handlers.NewDisputeHandler(disputeService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb,
		profileHandler, projectHandler, contractHandler, documentHandler,
		workHandler, timeEntryHandler, invoiceHandler, invitationHandler,
		proposalHandler, disputeHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
