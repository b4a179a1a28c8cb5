package models

import "time"

// TradeSide is the direction of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// AnonymousTrader is recorded when a trade is submitted without a user ID.
const AnonymousTrader = "anonymous"

// ZeroHash is the previous hash of the first proof in the chain.
const ZeroHash = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Trade is the canonical form of a submitted trade. Field order defines the hashed JSON.
type Trade struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Quantity  float64   `json:"quantity"`
	Side      TradeSide `json:"side"`
	UserID    string    `json:"userId"`
	Timestamp int64     `json:"timestamp"`
}

// VerifyTradeRequest is the body of POST /api/trades/verify.
type VerifyTradeRequest struct {
	Symbol   string  `json:"symbol" validate:"required,max=32"`
	Price    float64 `json:"price" validate:"required,gt=0"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Side     string  `json:"side" validate:"required,trade_side"`
	UserID   string  `json:"userId,omitempty" validate:"omitempty,max=128"`
}

// TradeProof records that a trade hash was verified and links it to its predecessor.
type TradeProof struct {
	TradeHash       string    `json:"tradeHash"`
	TransactionHash string    `json:"transactionHash"`
	Trader          string    `json:"trader"`
	Symbol          string    `json:"symbol"`
	Side            TradeSide `json:"side"`
	BlockNumber     int64     `json:"blockNumber"`
	PreviousHash    string    `json:"previousHash"`
	Timestamp       time.Time `json:"timestamp"`
}

// ProofView is the public representation of a proof lookup.
type ProofView struct {
	Exists       bool   `json:"exists"`
	Trader       string `json:"trader"`
	Timestamp    string `json:"timestamp"`
	BlockNumber  string `json:"blockNumber"`
	PreviousHash string `json:"previousHash"`
}

// VerificationResult is returned after a trade has been recorded.
type VerificationResult struct {
	Success         bool   `json:"success"`
	TradeHash       string `json:"tradeHash"`
	TransactionHash string `json:"transactionHash"`
	BlockNumber     int64  `json:"blockNumber"`
	PreviousHash    string `json:"previousHash"`
}

// TradeStats summarizes the ledger.
type TradeStats struct {
	TotalTrades   string `json:"totalTrades"`
	TotalUsers    string `json:"totalUsers"`
	LastTradeHash string `json:"lastTradeHash"`
	LastTimestamp string `json:"lastTimestamp"`
}
