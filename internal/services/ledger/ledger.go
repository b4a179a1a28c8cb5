// Package ledger records verified trades as a hash chain of proofs.
package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tradepros/tradepro-agents/internal/database"
	"github.com/tradepros/tradepro-agents/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

// ErrInvalidHash is returned for trade hashes that are not 32-byte hex strings.
var ErrInvalidHash = errors.New("invalid trade hash")

// Service verifies trades and answers proof queries.
type Service struct {
	repo   database.TradeProofRepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a ledger service backed by repo.
func NewService(repo database.TradeProofRepositoryInterface, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify hashes trade, appends a proof to the chain and returns the receipt.
// A zero Timestamp is filled with the current time in milliseconds.
func (s *Service) Verify(ctx context.Context, trade models.Trade) (*models.VerificationResult, error) {
	now := s.now().UTC()
	if trade.Timestamp == 0 {
		trade.Timestamp = now.UnixMilli()
	}
	if trade.UserID == "" {
		trade.UserID = models.AnonymousTrader
	}

	tradeHash, err := HashTrade(trade)
	if err != nil {
		return nil, err
	}

	proof := &models.TradeProof{
		TradeHash:       tradeHash,
		TransactionHash: transactionHash(tradeHash),
		Trader:          trade.UserID,
		Symbol:          trade.Symbol,
		Side:            trade.Side,
		Timestamp:       now,
	}

	s.logger.Debug("verifying_trade",
		zap.String("trade_hash", tradeHash),
		zap.String("symbol", trade.Symbol),
	)

	if err := s.repo.Append(ctx, proof); err != nil {
		return nil, fmt.Errorf("failed to record trade proof: %w", err)
	}

	s.logger.Info("trade_verified",
		zap.String("trade_hash", proof.TradeHash),
		zap.String("transaction_hash", proof.TransactionHash),
		zap.Int64("block_number", proof.BlockNumber),
	)

	return &models.VerificationResult{
		Success:         true,
		TradeHash:       proof.TradeHash,
		TransactionHash: proof.TransactionHash,
		BlockNumber:     proof.BlockNumber,
		PreviousHash:    proof.PreviousHash,
	}, nil
}

// Proof returns the proof for tradeHash. Unknown hashes yield Exists=false with zero values.
func (s *Service) Proof(ctx context.Context, tradeHash string) (*models.ProofView, error) {
	hash, err := NormalizeHash(tradeHash)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByHash(ctx, hash)
	if errors.Is(err, database.ErrProofNotFound) {
		return &models.ProofView{
			Exists:       false,
			Timestamp:    "0",
			BlockNumber:  "0",
			PreviousHash: models.ZeroHash,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.ProofView{
		Exists:       true,
		Trader:       p.Trader,
		Timestamp:    strconv.FormatInt(p.Timestamp.Unix(), 10),
		BlockNumber:  strconv.FormatInt(p.BlockNumber, 10),
		PreviousHash: p.PreviousHash,
	}, nil
}

// IsVerified reports whether tradeHash has a proof. Lookup failures count as unverified.
func (s *Service) IsVerified(ctx context.Context, tradeHash string) (bool, error) {
	hash, err := NormalizeHash(tradeHash)
	if err != nil {
		return false, err
	}
	_, err = s.repo.GetByHash(ctx, hash)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, database.ErrProofNotFound) {
		s.logger.Warn("trade_verification_lookup_failed",
			zap.String("trade_hash", hash),
			zap.Error(err),
		)
	}
	return false, nil
}

// Stats returns ledger totals with numeric values rendered as strings.
func (s *Service) Stats(ctx context.Context) (*models.TradeStats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &models.TradeStats{
		TotalTrades:   strconv.FormatInt(st.TotalTrades, 10),
		TotalUsers:    strconv.FormatInt(st.TotalUsers, 10),
		LastTradeHash: st.LastTradeHash,
		LastTimestamp: strconv.FormatInt(st.LastTimestamp, 10),
	}, nil
}

// Ping checks the backing repository.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// HashTrade returns the 0x-prefixed keccak256 of the trade's canonical JSON encoding.
func HashTrade(trade models.Trade) (string, error) {
	data, err := json.Marshal(trade)
	if err != nil {
		return "", fmt.Errorf("failed to encode trade: %w", err)
	}
	return keccakHex(data), nil
}

// NormalizeHash lower-cases a hash and adds the 0x prefix, rejecting anything but 32 bytes of hex.
func NormalizeHash(raw string) (string, error) {
	h := strings.ToLower(strings.TrimSpace(raw))
	h = strings.TrimPrefix(h, "0x")
	if len(h) != 64 {
		return "", fmt.Errorf("%w: expected 64 hex characters", ErrInvalidHash)
	}
	if _, err := hex.DecodeString(h); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return "0x" + h, nil
}

func transactionHash(tradeHash string) string {
	nonce := uuid.New()
	return keccakHex(append([]byte(tradeHash), nonce[:]...))
}

func keccakHex(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
