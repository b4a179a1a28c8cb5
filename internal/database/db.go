package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	*sql.DB
}

// New opens a PostgreSQL connection pool and verifies it with a ping.
func New(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

const tradeProofsSchema = `
CREATE TABLE IF NOT EXISTS trade_proofs (
	block_number     BIGINT PRIMARY KEY,
	trade_hash       TEXT NOT NULL UNIQUE,
	transaction_hash TEXT NOT NULL,
	trader           TEXT NOT NULL,
	symbol           TEXT NOT NULL,
	side             TEXT NOT NULL,
	previous_hash    TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the tables used by the repositories if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, tradeProofsSchema); err != nil {
		return fmt.Errorf("failed to create trade_proofs table: %w", err)
	}
	return nil
}
