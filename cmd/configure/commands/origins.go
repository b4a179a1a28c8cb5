package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tradepros/tradepro-agents/internal/config"
)

// NewOriginsCmd creates the origins command
func NewOriginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "origins",
		Short: "List allowed CORS origins",
		Long:  "Print the CORS origin set computed from FRONTEND_URL and the fixed development and production origins",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			origins := cfg.AllowedOrigins()
			sort.Strings(origins)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Allowed origins:")
			for _, origin := range origins {
				fmt.Fprintf(out, "  - %s\n", origin)
			}
			return nil
		},
	}

	return cmd
}
