// Command migrate creates or updates the database schema from the GORM
// persistence models. It is idempotent and safe to run on every deploy.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/promptatrium/backend/internal/infrastructure/config"
	"github.com/promptatrium/backend/internal/infrastructure/logger"
	"github.com/promptatrium/backend/internal/infrastructure/persistence"
	"github.com/promptatrium/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var (
		logLevel string
		dryRun   bool
	)

	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&dryRun, "dry-run", false, "Connect and list tables without migrating")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLogLevel := logger.MapGormLogLevel(logLevel)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	// Ordered so foreign-key targets are created before their referrers
	targets := []interface{}{
		&models.TenantModel{},
		&models.RoleModel{},
		&models.UserModel{},
		&models.UserRoleModel{},
		&models.CommunityModel{},
		&models.MembershipModel{},
		&models.InviteModel{},
		&models.PromptModel{},
		&models.RatingModel{},
		&models.PromptLikeModel{},
		&models.CollectionModel{},
		&models.ListingModel{},
		&models.OrderModel{},
		&models.DisputeModel{},
		&models.LedgerEntryModel{},
		&models.PayoutBatchModel{},
		&models.PayoutItemModel{},
		&models.OutboxEntryModel{},
	}

	if dryRun {
		for _, target := range targets {
			log.Info("Would migrate", zap.String("model", fmt.Sprintf("%T", target)))
		}
		log.Info("Dry run complete", zap.Int("models", len(targets)))
		return
	}

	log.Info("Running schema migration", zap.Int("models", len(targets)))
	if err := db.DB.AutoMigrate(targets...); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Schema migration complete")
}
