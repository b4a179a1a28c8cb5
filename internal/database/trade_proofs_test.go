package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/tradepros/tradepro-agents/internal/models"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"other pq error", &pq.Error{Code: "23503"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNew_EmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Error("Expected error for empty database URL")
	}
}

// TestTradeProofRepository_Postgres runs against TEST_DATABASE_URL when provided.
func TestTradeProofRepository_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set - skipping PostgreSQL integration test")
	}

	db, err := New(url)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE trade_proofs`); err != nil {
		t.Fatalf("truncate error: %v", err)
	}

	repo := NewTradeProofRepository(db)
	first := newProof("0xaa", "alice")
	first.Timestamp = time.Now().UTC()
	if err := repo.Append(ctx, first); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	second := newProof("0xbb", "bob")
	if err := repo.Append(ctx, second); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if second.PreviousHash != "0xaa" || second.BlockNumber != 2 {
		t.Errorf("Expected second proof linked to 0xaa at block 2, got %s at %d", second.PreviousHash, second.BlockNumber)
	}
	if err := repo.Append(ctx, newProof("0xaa", "alice")); !errors.Is(err, ErrProofExists) {
		t.Errorf("Expected ErrProofExists, got %v", err)
	}

	got, err := repo.GetByHash(ctx, "0xbb")
	if err != nil {
		t.Fatalf("GetByHash() error: %v", err)
	}
	if got.Side != models.TradeSideBuy {
		t.Errorf("Expected side buy, got %s", got.Side)
	}
	if _, err := repo.GetByHash(ctx, "0xmissing"); !errors.Is(err, ErrProofNotFound) {
		t.Errorf("Expected ErrProofNotFound, got %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.TotalTrades != 2 || stats.TotalUsers != 2 || stats.LastTradeHash != "0xbb" {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}
