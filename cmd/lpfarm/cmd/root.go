package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/logger"
)

var rootCmd = &cobra.Command{
	Use:   "lpfarm",
	Short: "A leveraged liquidity-provider yield farming simulator",
	Long: `Lpfarm simulates leveraged liquidity-provider positions in constant-product
pools, one day at a time.

It provides tools for:
  - Replaying historical pool APYs and token prices through a position
  - Generating synthetic price scenarios (constant, linear, random walk)
  - Reward handling strategies (sell, compound)
  - Threshold-based rebalancing
  - Journaling full epoch ledgers to SQLite or CSV`,
}

var logLevel string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	cobra.OnInitialize(func() {
		logger.Initialize(logLevel)
	})
}
