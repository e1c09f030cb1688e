package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"
	"time"

	"coverage-backend/internal/shared/config"
	"coverage-backend/internal/shared/storage/db"
	"coverage-backend/internal/shared/telemetry"
)

const migrateTimeout = 5 * time.Minute

func main() {
	if err := run(config.Load()); err != nil {
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.WithEnvOverrides(db.MigrateOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	start := time.Now()
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return err
	}
	telemetry.Info("migrate.complete", map[string]any{
		"env":         cfg.Env,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
