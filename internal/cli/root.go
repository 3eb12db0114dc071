// Package cli provides the command-line interface for ducto.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ductolabs/ducto/internal/cli/commands"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ducto",
		Short: "ducto - SQL transformation orchestrator",
		Long: `ducto runs a folder of SQL and scripted transformations against DuckDB.

Dependencies between transformations are inferred from the SQL itself,
so units can be executed in the right order without manual wiring.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ducto.yaml)")
	rootCmd.PersistentFlags().StringP("database", "d", "", "Path to DuckDB database (empty for in-memory)")
	rootCmd.PersistentFlags().StringP("folder", "f", "", "Path to the transformations folder")
	rootCmd.PersistentFlags().StringP("schema", "s", "", "Target schema for materializations")
	rootCmd.PersistentFlags().String("resolution", "", "Placeholder resolution policy (strict|lenient)")
	rootCmd.PersistentFlags().String("resolution-default", "", "Fallback value for unresolved placeholders in lenient mode")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewDAGCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewBackupCommand())
	rootCmd.AddCommand(commands.NewRestoreCommand())

	return rootCmd
}
