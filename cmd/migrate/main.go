// Command migrate creates the tables the API reads and writes. Every
// statement is idempotent, so it is safe to run on each deploy.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"qarilive-service/internal/config"
	"qarilive-service/internal/repository/postgres"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MIGRATE] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	if err := run(cfg.DatabaseURL); err != nil {
		logger.Error("migration failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("schema applied")
}

func run(databaseURL string) error {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, postgres.Schema)
	return err
}
