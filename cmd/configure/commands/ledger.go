package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tradepros/tradepro-agents/internal/config"
	"github.com/tradepros/tradepro-agents/internal/database"
	"github.com/tradepros/tradepro-agents/internal/models"
	"github.com/tradepros/tradepro-agents/internal/services/ledger"
	"github.com/tradepros/tradepro-agents/internal/validation"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show trade ledger statistics",
		Long:  "Connect to the configured database and print the trade ledger statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set; the in-memory ledger is only visible to the running server")
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close database: %v\n", err)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			stats, err := ledger.NewService(database.NewTradeProofRepository(db), nil).Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read ledger stats: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}

	return cmd
}

// NewHashCmd creates the hash command
func NewHashCmd() *cobra.Command {
	var trade models.Trade
	var side string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute a trade hash",
		Long:  "Compute the keccak256 hash the ledger records for a trade, without contacting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			side = strings.ToLower(strings.TrimSpace(side))
			if err := validation.ValidateTradeSide(side); err != nil {
				return err
			}
			if trade.Timestamp <= 0 {
				return fmt.Errorf("--timestamp is required (unix milliseconds)")
			}

			trade.Symbol = validation.NormalizeSymbol(trade.Symbol)
			trade.Side = models.TradeSide(side)
			if trade.UserID == "" {
				trade.UserID = models.AnonymousTrader
			}

			hash, err := ledger.HashTrade(trade)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&trade.Symbol, "symbol", "", "Trade symbol (required)")
	cmd.Flags().Float64Var(&trade.Price, "price", 0, "Trade price")
	cmd.Flags().Float64Var(&trade.Quantity, "quantity", 0, "Trade quantity")
	cmd.Flags().StringVar(&side, "side", "", "buy or sell (required)")
	cmd.Flags().StringVar(&trade.UserID, "user", "", "Trader ID (defaults to anonymous)")
	cmd.Flags().Int64Var(&trade.Timestamp, "timestamp", 0, "Trade timestamp in unix milliseconds (required)")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("side")

	return cmd
}
