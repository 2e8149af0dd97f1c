// Package cmd provides the command-line interface for veritb.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "veritb",
	Short: "veritb runs hardware verification tests against an " +
		"event-driven simulator kernel.",
	Long: `veritb multiplexes suspendable verification tasks over a ` +
		`callback-driven simulator kernel. Tests await signal edges, ` +
		`timers, and combined conditions while the kernel advances ` +
		`simulated time.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envFile, _ := cmd.Flags().GetString("env")

		// Missing env files are fine; the flags carry the defaults.
		_ = godotenv.Load(envFile)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String(
		"env", ".env", "environment file with VERITB_* settings")
}
