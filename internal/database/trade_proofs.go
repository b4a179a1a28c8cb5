package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tradepros/tradepro-agents/internal/models"
)

// appendLockKey serializes chain appends across API instances sharing one database.
const appendLockKey = 7461726465

// TradeProofRepository stores trade proofs in PostgreSQL.
type TradeProofRepository struct {
	db *DB
}

// NewTradeProofRepository creates a new trade proof repository
func NewTradeProofRepository(db *DB) *TradeProofRepository {
	return &TradeProofRepository{db: db}
}

// Append inserts proof after the current chain head inside a transaction.
func (r *TradeProofRepository) Append(ctx context.Context, proof *models.TradeProof) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		return fmt.Errorf("failed to lock trade proof chain: %w", err)
	}

	var headBlock int64
	headHash := models.ZeroHash
	err = tx.QueryRowContext(ctx, `
		SELECT block_number, trade_hash FROM trade_proofs
		ORDER BY block_number DESC LIMIT 1
	`).Scan(&headBlock, &headHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read chain head: %w", err)
	}

	proof.BlockNumber = headBlock + 1
	proof.PreviousHash = headHash

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trade_proofs (block_number, trade_hash, transaction_hash, trader, symbol, side, previous_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		proof.BlockNumber,
		proof.TradeHash,
		proof.TransactionHash,
		proof.Trader,
		proof.Symbol,
		string(proof.Side),
		proof.PreviousHash,
		proof.Timestamp,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrProofExists, proof.TradeHash)
	}
	if err != nil {
		return fmt.Errorf("failed to insert trade proof: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trade proof: %w", err)
	}
	return nil
}

// GetByHash retrieves a proof by trade hash
func (r *TradeProofRepository) GetByHash(ctx context.Context, tradeHash string) (*models.TradeProof, error) {
	p := &models.TradeProof{}
	var side string
	err := r.db.QueryRowContext(ctx, `
		SELECT trade_hash, transaction_hash, trader, symbol, side, block_number, previous_hash, created_at
		FROM trade_proofs WHERE trade_hash = $1
	`, tradeHash).Scan(
		&p.TradeHash,
		&p.TransactionHash,
		&p.Trader,
		&p.Symbol,
		&side,
		&p.BlockNumber,
		&p.PreviousHash,
		&p.Timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProofNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade proof: %w", err)
	}
	p.Side = models.TradeSide(side)
	return p, nil
}

// Stats returns totals and the chain head.
func (r *TradeProofRepository) Stats(ctx context.Context) (*LedgerStats, error) {
	stats := &LedgerStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT trader) FROM trade_proofs
	`).Scan(&stats.TotalTrades, &stats.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count trade proofs: %w", err)
	}

	stats.LastTradeHash = models.ZeroHash
	if stats.TotalTrades == 0 {
		return stats, nil
	}

	var last sql.NullTime
	err = r.db.QueryRowContext(ctx, `
		SELECT trade_hash, created_at FROM trade_proofs
		ORDER BY block_number DESC LIMIT 1
	`).Scan(&stats.LastTradeHash, &last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read chain head: %w", err)
	}
	if last.Valid {
		stats.LastTimestamp = last.Time.Unix()
	}
	return stats, nil
}

// Ping checks the database connection
func (r *TradeProofRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
