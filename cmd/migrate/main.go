package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-assistant/internal/infrastructure/database"
	"github.com/johnquangdev/talk-assistant/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll migrations back instead of applying them")
	steps := flag.Int("steps", 0, "maximum number of migrations to run (0 = all)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db, logger)

	dir := migrate.Up
	if *down {
		dir = migrate.Down
	}

	logger.Info("🔄 Running embedded migrations...", zap.Bool("down", *down), zap.Int("steps", *steps))
	if _, err := database.Migrate(db, dir, *steps, logger); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
}
