package db

import (
	"context"
	"time"

	"tap_duel/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the history database. An empty dsn disables history and
// returns nil; a configured but unreachable database is fatal.
func Connect(dsn string) *pgxpool.Pool {
	if dsn == "" {
		logger.Warn("DATABASE_URL not set; match history disabled")
		return nil
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return db
}
