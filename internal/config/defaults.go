package config

// Default configuration values.
const (
	DefaultDatabase  = "ducto.db"
	DefaultFolder    = "transformations"
	DefaultSchema    = "transform"
	DefaultDialect   = "duckdb"
	DefaultLogFormat = "text"
)

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Folder == "" {
		c.Folder = DefaultFolder
	}
	if c.Schema == "" {
		c.Schema = DefaultSchema
	}
	if c.Dialect == "" {
		c.Dialect = DefaultDialect
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}
