package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/tradepros/tradepro-agents/internal/database"
	"github.com/tradepros/tradepro-agents/internal/models"
	"github.com/tradepros/tradepro-agents/internal/services/ledger"
	"go.uber.org/zap"
)

func newTradeRouter(l TradeLedger) *mux.Router {
	r := mux.NewRouter()
	NewTradeHandler(l, zap.NewNop()).RegisterRoutes(r.PathPrefix("/api/trades").Subrouter())
	return r
}

func newLedgerRouter() *mux.Router {
	return newTradeRouter(ledger.NewService(database.NewMemoryTradeProofRepository(), zap.NewNop()))
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestTradeHandler_Test(t *testing.T) {
	t.Parallel()

	w, env := do(t, newLedgerRouter(), "GET", "/api/trades/test", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !env.Success || env.Message != "Trade routes are working!" {
		t.Errorf("Unexpected response: %+v", env)
	}
}

func TestTradeHandler_VerifyValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"symbol":`},
		{"missing side", `{"symbol":"BTCUSDT","price":1,"quantity":1}`},
		{"missing symbol", `{"price":1,"quantity":1,"side":"buy"}`},
		{"zero price", `{"symbol":"BTCUSDT","price":0,"quantity":1,"side":"buy"}`},
		{"invalid side", `{"symbol":"BTCUSDT","price":1,"quantity":1,"side":"hodl"}`},
		{"blank symbol", `{"symbol":"   ","price":1,"quantity":1,"side":"buy"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, env := do(t, newLedgerRouter(), "POST", "/api/trades/verify", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
			if env.Success {
				t.Error("Expected success false")
			}
		})
	}
}

func TestTradeHandler_VerifyAndLookup(t *testing.T) {
	t.Parallel()

	router := newLedgerRouter()

	w, env := do(t, router, "POST", "/api/trades/verify", `{"symbol":"btcusdt","price":65000,"quantity":0.5,"side":"BUY","userId":"alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var result models.VerificationResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.BlockNumber != 1 || result.PreviousHash != models.ZeroHash {
		t.Errorf("Unexpected result: %+v", result)
	}

	w, env = do(t, router, "GET", "/api/trades/proof/"+result.TradeHash, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var proof models.ProofView
	if err := json.Unmarshal(env.Data, &proof); err != nil {
		t.Fatalf("Failed to decode proof: %v", err)
	}
	if !proof.Exists || proof.Trader != "alice" || proof.BlockNumber != "1" {
		t.Errorf("Unexpected proof: %+v", proof)
	}

	w, env = do(t, router, "GET", "/api/trades/verified/"+result.TradeHash, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var verified struct {
		TradeHash  string `json:"tradeHash"`
		IsVerified bool   `json:"isVerified"`
	}
	if err := json.Unmarshal(env.Data, &verified); err != nil {
		t.Fatalf("Failed to decode verified: %v", err)
	}
	if !verified.IsVerified || verified.TradeHash != result.TradeHash {
		t.Errorf("Unexpected verified response: %+v", verified)
	}

	w, env = do(t, router, "GET", "/api/trades/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var stats models.TradeStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.TotalTrades != "1" || stats.TotalUsers != "1" || stats.LastTradeHash != result.TradeHash {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestTradeHandler_InvalidHash(t *testing.T) {
	t.Parallel()

	w, env := do(t, newLedgerRouter(), "GET", "/api/trades/proof/not-a-hash", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if env.Success {
		t.Error("Expected success false")
	}
}

func TestTradeHandler_VerifiedMalformedHash(t *testing.T) {
	t.Parallel()

	for _, hash := range []string{"0x1234", "not-a-hash", "0x" + strings.Repeat("zz", 32)} {
		w, env := do(t, newLedgerRouter(), "GET", "/api/trades/verified/"+hash, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", hash, w.Code)
			continue
		}
		var verified struct {
			TradeHash  string `json:"tradeHash"`
			IsVerified bool   `json:"isVerified"`
		}
		if err := json.Unmarshal(env.Data, &verified); err != nil {
			t.Fatalf("%s: failed to decode verified: %v", hash, err)
		}
		if verified.IsVerified || verified.TradeHash != hash {
			t.Errorf("%s: unexpected verified response: %+v", hash, verified)
		}
	}
}

func TestTradeHandler_UnknownHash(t *testing.T) {
	t.Parallel()

	w, env := do(t, newLedgerRouter(), "GET", "/api/trades/proof/0x"+strings.Repeat("ab", 32), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var proof models.ProofView
	if err := json.Unmarshal(env.Data, &proof); err != nil {
		t.Fatalf("Failed to decode proof: %v", err)
	}
	if proof.Exists {
		t.Error("Expected unknown proof to not exist")
	}
}

type failingLedger struct {
	verifyErr error
}

func (f failingLedger) Verify(ctx context.Context, trade models.Trade) (*models.VerificationResult, error) {
	return nil, f.verifyErr
}

func (f failingLedger) Proof(ctx context.Context, tradeHash string) (*models.ProofView, error) {
	return nil, errors.New("database down")
}

func (f failingLedger) IsVerified(ctx context.Context, tradeHash string) (bool, error) {
	return false, errors.New("database down")
}

func (f failingLedger) Stats(ctx context.Context) (*models.TradeStats, error) {
	return nil, errors.New("database down")
}

func TestTradeHandler_LedgerErrors(t *testing.T) {
	t.Parallel()

	validBody := `{"symbol":"BTCUSDT","price":1,"quantity":1,"side":"buy"}`
	hash := "0x" + strings.Repeat("ab", 32)

	tests := []struct {
		name       string
		ledger     failingLedger
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"verify conflict", failingLedger{verifyErr: database.ErrProofExists}, "POST", "/api/trades/verify", validBody, http.StatusConflict},
		{"verify failure", failingLedger{verifyErr: errors.New("boom")}, "POST", "/api/trades/verify", validBody, http.StatusInternalServerError},
		{"proof failure", failingLedger{}, "GET", "/api/trades/proof/" + hash, "", http.StatusInternalServerError},
		{"verified failure", failingLedger{}, "GET", "/api/trades/verified/" + hash, "", http.StatusInternalServerError},
		{"stats failure", failingLedger{}, "GET", "/api/trades/stats", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, env := do(t, newTradeRouter(tt.ledger), tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if env.Success {
				t.Error("Expected success false")
			}
		})
	}
}
