package commands

import (
	"github.com/spf13/cobra"

	"github.com/ductolabs/ducto/internal/engine"
)

// NewRestoreCommand creates the restore command.
func NewRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Download a backup from object storage and import it",
		Long: `Download the parquet export stored under the configured prefix and
import it into the local database. Restoring over an existing database
file requires --overwrite, which deletes the file first.`,
		Example: `  # Restore using settings from ducto.yaml
  ducto restore

  # Replace the existing local database
  ducto restore --overwrite`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, prefix, err := openStore(cmdCtx.Config)
			if err != nil {
				return err
			}
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			return engine.Restore(cmd.Context(), cmdCtx.Config.Database, store, prefix, overwrite, cmdCtx.Logger)
		},
	}

	addS3Flags(cmd)
	cmd.Flags().Bool("overwrite", false, "Delete the existing local database before importing")
	return cmd
}
