package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sdramsim",
	Short: "sdramsim runs cycle-level SDRAM controller simulations.",
	Long: `sdramsim runs cycle-level simulations of a full-page-burst SDRAM ` +
		`controller against a behavioral device model. Scenarios cover ` +
		`refresh-only operation, burst reads and writes, and bursts ` +
		`interrupted by preventive refreshes.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

// envOr returns the value of the environment variable named by key, or def
// when the variable is unset or empty.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
