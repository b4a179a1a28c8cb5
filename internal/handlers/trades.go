package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tradepros/tradepro-agents/internal/database"
	"github.com/tradepros/tradepro-agents/internal/models"
	"github.com/tradepros/tradepro-agents/internal/services/ledger"
	"github.com/tradepros/tradepro-agents/internal/validation"
	"go.uber.org/zap"
)

// TradeLedger is the ledger behaviour the trade routes depend on.
type TradeLedger interface {
	Verify(ctx context.Context, trade models.Trade) (*models.VerificationResult, error)
	Proof(ctx context.Context, tradeHash string) (*models.ProofView, error)
	IsVerified(ctx context.Context, tradeHash string) (bool, error)
	Stats(ctx context.Context) (*models.TradeStats, error)
}

var _ TradeLedger = (*ledger.Service)(nil)

// TradeHandler serves the /api/trades routes.
type TradeHandler struct {
	ledger TradeLedger
	logger *zap.Logger
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(l TradeLedger, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{ledger: l, logger: logger}
}

// RegisterRoutes registers trade routes on a router already scoped to /api/trades.
func (h *TradeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/test", h.Test).Methods(http.MethodGet)
	r.HandleFunc("/verify", h.VerifyTrade).Methods(http.MethodPost)
	r.HandleFunc("/proof/{tradeHash}", h.GetProof).Methods(http.MethodGet)
	r.HandleFunc("/verified/{tradeHash}", h.IsVerified).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
}

// Test confirms the trade routes are mounted.
func (h *TradeHandler) Test(w http.ResponseWriter, r *http.Request) {
	respondJSONMessage(w, http.StatusOK, "Trade routes are working!", nil)
}

// VerifyTrade handles POST /api/trades/verify
func (h *TradeHandler) VerifyTrade(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Symbol = validation.NormalizeSymbol(req.Symbol)
	req.Side = strings.ToLower(strings.TrimSpace(req.Side))
	req.UserID = validation.SanitizeText(req.UserID)

	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request",
			"Missing or invalid fields: "+strings.Join(validation.FieldErrors(err), ", "))
		return
	}

	trade := models.Trade{
		Symbol:   req.Symbol,
		Price:    req.Price,
		Quantity: req.Quantity,
		Side:     models.TradeSide(req.Side),
		UserID:   req.UserID,
	}

	result, err := h.ledger.Verify(r.Context(), trade)
	if errors.Is(err, database.ErrProofExists) {
		respondJSONError(w, http.StatusConflict, "Conflict", "Trade has already been verified")
		return
	}
	if err != nil {
		h.logger.Error("trade_verification_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to verify trade")
		return
	}

	respondJSONMessage(w, http.StatusOK, "Trade verified", result)
}

// GetProof handles GET /api/trades/proof/{tradeHash}
func (h *TradeHandler) GetProof(w http.ResponseWriter, r *http.Request) {
	proof, err := h.ledger.Proof(r.Context(), mux.Vars(r)["tradeHash"])
	if errors.Is(err, ledger.ErrInvalidHash) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed_to_get_trade_proof", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get trade proof")
		return
	}
	respondJSON(w, http.StatusOK, proof)
}

// IsVerified handles GET /api/trades/verified/{tradeHash}. A malformed hash cannot have been
// verified, so it answers isVerified false rather than an error.
func (h *TradeHandler) IsVerified(w http.ResponseWriter, r *http.Request) {
	tradeHash := mux.Vars(r)["tradeHash"]
	verified, err := h.ledger.IsVerified(r.Context(), tradeHash)
	if errors.Is(err, ledger.ErrInvalidHash) {
		verified, err = false, nil
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to check verification")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"tradeHash":  tradeHash,
		"isVerified": verified,
	})
}

// Stats handles GET /api/trades/stats
func (h *TradeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed_to_get_trade_stats", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get trade statistics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
