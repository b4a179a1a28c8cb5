package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tradepros/tradepro-agents/cmd/configure/commands"
)

func main() {
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use:   "tradepro-configure",
		Short: "Configuration tool for the TradePro AI Agents API",
		Long:  "CLI tool for inspecting the effective configuration, checking dependencies and querying the trade ledger",
	}

	rootCmd.AddCommand(commands.NewOriginsCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewStatsCmd())
	rootCmd.AddCommand(commands.NewHashCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
