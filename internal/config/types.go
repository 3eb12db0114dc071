// Package config loads project configuration for ducto. It is
// decoupled from CLI concerns so other tools can load the same file.
package config

import (
	"fmt"

	"github.com/ductolabs/ducto/internal/engine"
)

// S3Config holds object-store settings for backup and restore.
type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	Bucket    string `koanf:"bucket"`
	Prefix    string `koanf:"prefix"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// Config is the full project configuration after layering defaults,
// the config file, environment variables and flags.
type Config struct {
	// Database is the DuckDB file path (empty for in-memory).
	Database string `koanf:"database"`
	// Folder contains the transformation unit files.
	Folder string `koanf:"folder"`
	// Schema is the target schema for materializations.
	Schema string `koanf:"schema"`
	// Dialect selects the SQL dialect for dependency analysis.
	Dialect string `koanf:"dialect"`

	// Resolution is "strict" or "lenient".
	Resolution string `koanf:"resolution"`
	// ResolutionDefault substitutes unresolved placeholders in lenient mode.
	ResolutionDefault string `koanf:"resolution_default"`

	Verbose   bool   `koanf:"verbose"`
	LogFormat string `koanf:"log_format"`

	S3 S3Config `koanf:"s3"`
}

// ResolutionMode maps the configured resolution string to the engine's
// policy type.
func (c *Config) ResolutionMode() (engine.ResolutionMode, error) {
	switch c.Resolution {
	case "", "strict":
		return engine.ResolveStrict, nil
	case "lenient":
		return engine.ResolveLenient, nil
	}
	return engine.ResolveStrict, fmt.Errorf("unknown resolution mode %q (want strict or lenient)", c.Resolution)
}
