package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ductolabs/ducto/internal/config"
	"github.com/ductolabs/ducto/internal/engine"
	"github.com/ductolabs/ducto/internal/storage/s3"
)

func addS3Flags(cmd *cobra.Command) {
	cmd.Flags().String("s3-endpoint", "", "S3 endpoint (host:port)")
	cmd.Flags().String("s3-region", "", "S3 region")
	cmd.Flags().String("s3-bucket", "", "S3 bucket")
	cmd.Flags().String("s3-prefix", "", "Key prefix inside the bucket")
	cmd.Flags().String("s3-access-key", "", "S3 access key id")
	cmd.Flags().String("s3-secret-key", "", "S3 secret access key")
	cmd.Flags().Bool("s3-use-ssl", false, "Use TLS when talking to the endpoint")
}

// openStore builds the object store from the layered S3 settings.
func openStore(cfg *config.Config) (*s3.Store, string, error) {
	prefix := cfg.S3.Prefix
	if prefix == "" {
		return nil, "", errors.New("an S3 prefix is required (--s3-prefix or s3.prefix in ducto.yaml)")
	}
	store, err := s3.New(s3.Config{
		Endpoint:        cfg.S3.Endpoint,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKey,
		SecretAccessKey: cfg.S3.SecretKey,
		UseSSL:          cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, "", err
	}
	return store, prefix, nil
}

// NewBackupCommand creates the backup command.
func NewBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the database as parquet and upload it to object storage",
		Long: `Export the whole database in parquet format and mirror the export to
an S3-compatible bucket under the configured prefix.`,
		Example: `  # Back up using settings from ducto.yaml
  ducto backup

  # Back up to an explicit location
  ducto backup --s3-endpoint localhost:9000 --s3-bucket backups --s3-prefix nightly`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			store, prefix, err := openStore(cmdCtx.Config)
			if err != nil {
				return err
			}
			return engine.Backup(cmd.Context(), cmdCtx.Config.Database, store, prefix, cmdCtx.Logger)
		},
	}

	addS3Flags(cmd)
	return cmd
}
