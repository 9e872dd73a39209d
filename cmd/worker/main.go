package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/config"
	"github.com/expert-marketplace/backend/internal/db"
	"github.com/expert-marketplace/backend/internal/events"
	"github.com/expert-marketplace/backend/internal/models"
	"github.com/expert-marketplace/backend/internal/repositories"
	"github.com/expert-marketplace/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	profileRepo := repositories.NewProfileRepo(pool)
	projectRepo := repositories.NewProjectRepo(pool)
	contractRepo := repositories.NewContractRepo(pool)
	docRepo := repositories.NewDocumentRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	invitationRepo := repositories.NewInvitationRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	notifyClient := services.NewNotifyClient(cfg.NotifyInternalURL, log)
	documentService := services.NewDocumentService(pool, docRepo, contractRepo, projectRepo, profileRepo, auditRepo, publisher, notifyClient, cfg, log)
	contractService := services.NewContractService(pool, contractRepo, docRepo, projectRepo, profileRepo, escrowRepo, invoiceRepo, auditRepo, documentService, publisher, notifyClient, cfg, log)
	invitationService := services.NewInvitationService(pool, invitationRepo, projectRepo, contractRepo, auditRepo, contractService, publisher, notifyClient, cfg, log)

	log.Info("worker started")

	// Run jobs on tickers
	expiryTicker := time.NewTicker(5 * time.Minute)
	reminderTicker := time.NewTicker(1 * time.Hour)
	reconcileTicker := time.NewTicker(15 * time.Minute)
	defer expiryTicker.Stop()
	defer reminderTicker.Stop()
	defer reconcileTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expiryTicker.C:
			runInvitationExpiry(ctx, invitationService, log)
		case <-reminderTicker.C:
			runSigningReminders(ctx, contractRepo, notifyClient, rdb, cfg, log)
		case <-reconcileTicker.C:
			runEscrowReconciliation(ctx, contractRepo, escrowRepo, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runInvitationExpiry(ctx context.Context, invitationService *services.InvitationService, log *zap.Logger) {
	n, err := invitationService.ExpireStale(ctx)
	if err != nil {
		log.Error("failed to expire stale invitations", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("expired stale invitations", zap.Int("count", n))
	}
}

// runSigningReminders nudges the expert on contracts that have sat pending
// past the reminder threshold. A redis key caps it at one nudge per day.
func runSigningReminders(ctx context.Context, contractRepo *repositories.ContractRepo, notify *services.NotifyClient, rdb *redis.Client, cfg *config.Config, log *zap.Logger) {
	contracts, err := contractRepo.ListPendingUnsignedOlderThan(ctx, cfg.SigningReminderSeconds)
	if err != nil {
		log.Error("failed to list unsigned contracts", zap.Error(err))
		return
	}

	for _, contract := range contracts {
		key := fmt.Sprintf("signing_reminder:%s", contract.ID)
		set, err := rdb.SetNX(ctx, key, "1", 24*time.Hour).Result()
		if err != nil || !set {
			continue
		}

		log.Info("sending signing reminder", zap.String("contract_id", contract.ID.String()))
		_ = notify.Notify(ctx, contract.ExpertProfileID, "contract_signing_reminder", map[string]any{
			"contract_id": contract.ID.String(),
		})
	}
}

// runEscrowReconciliation compares the contract's cached escrow columns with
// the ledger sums and flags drift. It never mutates, only alerts.
func runEscrowReconciliation(ctx context.Context, contractRepo *repositories.ContractRepo, escrowRepo *repositories.EscrowRepo, log *zap.Logger) {
	for _, status := range []string{models.ContractStatusActive, models.ContractStatusPaused} {
		st := status
		contracts, err := contractRepo.List(ctx, repositories.ContractFilter{Status: &st, Limit: 100})
		if err != nil {
			log.Error("failed to list contracts for reconciliation", zap.Error(err))
			return
		}

		for _, contract := range contracts {
			deposited, released, err := escrowRepo.Balances(ctx, contract.ID)
			if err != nil {
				log.Error("failed to read escrow ledger", zap.String("contract_id", contract.ID.String()), zap.Error(err))
				continue
			}

			ledgerBalance := deposited - released
			if math.Abs(ledgerBalance-contract.EscrowBalance) > 0.01 {
				log.Error("escrow balance drift",
					zap.String("contract_id", contract.ID.String()),
					zap.Float64("ledger_balance", ledgerBalance),
					zap.Float64("contract_balance", contract.EscrowBalance),
				)
			}
		}
	}
}
