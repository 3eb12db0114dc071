package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ductolabs/ducto/internal/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ducto.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultFolder, cfg.Folder)
	assert.Equal(t, DefaultSchema, cfg.Schema)
	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.False(t, cfg.Verbose)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
database: warehouse.db
folder: sql
schema: analytics
resolution: lenient
resolution_default: dev
s3:
  endpoint: localhost:9000
  bucket: backups
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "warehouse.db", cfg.Database)
	assert.Equal(t, "sql", cfg.Folder)
	assert.Equal(t, "analytics", cfg.Schema)
	assert.Equal(t, "lenient", cfg.Resolution)
	assert.Equal(t, "dev", cfg.ResolutionDefault)
	assert.Equal(t, "localhost:9000", cfg.S3.Endpoint)
	assert.Equal(t, "backups", cfg.S3.Bucket)

	// Unset fields still fall back to defaults.
	assert.Equal(t, DefaultDialect, cfg.Dialect)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database: from_file.db\n")
	t.Setenv("DUCTO_DATABASE", "from_env.db")
	t.Setenv("DUCTO_S3_BUCKET", "env-bucket")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from_env.db", cfg.Database)
	assert.Equal(t, "env-bucket", cfg.S3.Bucket)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("DUCTO_FOLDER", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("folder", "", "")
	flags.String("schema", "", "")
	require.NoError(t, flags.Parse([]string{"--folder", "from_flag", "--schema", "raw"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag", cfg.Folder)
	assert.Equal(t, "raw", cfg.Schema)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("schema", "flag-default", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchema, cfg.Schema)
}

func TestResolutionMode(t *testing.T) {
	cfg := &Config{}
	mode, err := cfg.ResolutionMode()
	require.NoError(t, err)
	assert.Equal(t, engine.ResolveStrict, mode)

	cfg.Resolution = "lenient"
	mode, err = cfg.ResolutionMode()
	require.NoError(t, err)
	assert.Equal(t, engine.ResolveLenient, mode)

	cfg.Resolution = "sometimes"
	_, err = cfg.ResolutionMode()
	require.Error(t, err)
}
