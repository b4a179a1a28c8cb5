package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/tradepros/tradepro-agents/internal/models"
)

// MemoryTradeProofRepository keeps proofs in process memory. Used when DATABASE_URL is unset.
type MemoryTradeProofRepository struct {
	mu      sync.RWMutex
	chain   []*models.TradeProof
	byHash  map[string]*models.TradeProof
	traders map[string]struct{}
}

// NewMemoryTradeProofRepository creates an empty in-memory repository.
func NewMemoryTradeProofRepository() *MemoryTradeProofRepository {
	return &MemoryTradeProofRepository{
		byHash:  make(map[string]*models.TradeProof),
		traders: make(map[string]struct{}),
	}
}

func (r *MemoryTradeProofRepository) Append(ctx context.Context, proof *models.TradeProof) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHash[proof.TradeHash]; ok {
		return fmt.Errorf("%w: %s", ErrProofExists, proof.TradeHash)
	}

	proof.BlockNumber = int64(len(r.chain)) + 1
	proof.PreviousHash = models.ZeroHash
	if n := len(r.chain); n > 0 {
		proof.PreviousHash = r.chain[n-1].TradeHash
	}

	stored := *proof
	r.chain = append(r.chain, &stored)
	r.byHash[stored.TradeHash] = &stored
	r.traders[stored.Trader] = struct{}{}
	return nil
}

func (r *MemoryTradeProofRepository) GetByHash(ctx context.Context, tradeHash string) (*models.TradeProof, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byHash[tradeHash]
	if !ok {
		return nil, ErrProofNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryTradeProofRepository) Stats(ctx context.Context) (*LedgerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &LedgerStats{
		TotalTrades:   int64(len(r.chain)),
		TotalUsers:    int64(len(r.traders)),
		LastTradeHash: models.ZeroHash,
	}
	if n := len(r.chain); n > 0 {
		stats.LastTradeHash = r.chain[n-1].TradeHash
		stats.LastTimestamp = r.chain[n-1].Timestamp.Unix()
	}
	return stats, nil
}

func (r *MemoryTradeProofRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
