package database

import (
	"context"
	"errors"

	"github.com/tradepros/tradepro-agents/internal/models"
)

var (
	// ErrProofNotFound is returned when no proof exists for a trade hash.
	ErrProofNotFound = errors.New("trade proof not found")
	// ErrProofExists is returned when a trade hash has already been recorded.
	ErrProofExists = errors.New("trade proof already exists")
)

// LedgerStats is the aggregate view of recorded proofs.
type LedgerStats struct {
	TotalTrades   int64
	TotalUsers    int64
	LastTradeHash string
	LastTimestamp int64
}

// TradeProofRepositoryInterface is implemented by the PostgreSQL and in-memory stores.
type TradeProofRepositoryInterface interface {
	// Append links proof to the current chain head, assigning BlockNumber and PreviousHash.
	Append(ctx context.Context, proof *models.TradeProof) error
	GetByHash(ctx context.Context, tradeHash string) (*models.TradeProof, error)
	Stats(ctx context.Context) (*LedgerStats, error)
	Ping(ctx context.Context) error
}

var (
	_ TradeProofRepositoryInterface = (*TradeProofRepository)(nil)
	_ TradeProofRepositoryInterface = (*MemoryTradeProofRepository)(nil)
)
