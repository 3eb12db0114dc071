// Package engine owns the execution side of a run: the live database
// connection wrapped in an execution context, and the executor state
// machine that materializes units in scheduler order.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"regexp"
)

// ResolutionMode controls how unresolved {{ name }} placeholders are
// handled during interpolation.
type ResolutionMode int

const (
	// ResolveStrict makes an unresolved placeholder fatal.
	ResolveStrict ResolutionMode = iota
	// ResolveLenient substitutes a caller-supplied default.
	ResolveLenient
)

// envPattern matches {{ NAME }} placeholders in executed text.
var envPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Context owns the live database connection and the active schema for
// the duration of one run. No other component issues statements against
// the connection directly.
type Context struct {
	db       *sql.DB
	schema   string
	mode     ResolutionMode
	fallback string
	logger   *slog.Logger
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithResolution sets the placeholder resolution policy. The fallback
// is only consulted in lenient mode.
func WithResolution(mode ResolutionMode, fallback string) ContextOption {
	return func(c *Context) {
		c.mode = mode
		c.fallback = fallback
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) {
		c.logger = logger
	}
}

// NewContext wraps an open database connection. The context takes
// ownership: Close releases the connection.
func NewContext(db *sql.DB, opts ...ContextOption) *Context {
	c := &Context{
		db:     db,
		mode:   ResolveStrict,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interpolate substitutes {{ NAME }} placeholders with environment
// values. In strict mode an unresolved name is a MissingEnvVarError; in
// lenient mode the configured fallback is used.
func (c *Context) Interpolate(text string) (string, error) {
	var missing error
	replaced := envPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		value, ok := os.LookupEnv(name)
		if ok {
			return value
		}
		if c.mode == ResolveLenient {
			return c.fallback
		}
		if missing == nil {
			missing = &MissingEnvVarError{Name: name}
		}
		return ""
	})
	if missing != nil {
		return "", missing
	}
	return replaced, nil
}

// Exec interpolates and executes a statement for its side effects.
func (c *Context) Exec(ctx context.Context, text string) error {
	interpolated, err := c.Interpolate(text)
	if err != nil {
		return err
	}
	c.logger.Debug("executing statement", "sql", interpolated)
	if _, err := c.db.ExecContext(ctx, interpolated); err != nil {
		return &EngineError{SQL: interpolated, Err: err}
	}
	return nil
}

// Query interpolates and executes a query, returning column names and
// all row values. Used by scripted units through their context surface.
func (c *Context) Query(ctx context.Context, text string) ([]string, [][]any, error) {
	interpolated, err := c.Interpolate(text)
	if err != nil {
		return nil, nil, err
	}

	rows, err := c.db.QueryContext(ctx, interpolated)
	if err != nil {
		return nil, nil, &EngineError{SQL: interpolated, Err: err}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, &EngineError{SQL: interpolated, Err: err}
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, nil, &EngineError{SQL: interpolated, Err: err}
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, &EngineError{SQL: interpolated, Err: err}
	}
	return columns, out, nil
}

// EnsureSchema creates the schema if absent and selects it for all
// subsequent statements. Idempotent across repeated runs.
func (c *Context) EnsureSchema(ctx context.Context, name string) error {
	if err := c.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", name)); err != nil {
		return err
	}
	if err := c.Exec(ctx, fmt.Sprintf("USE %s", name)); err != nil {
		return err
	}
	c.schema = name
	return nil
}

// Schema returns the active schema name.
func (c *Context) Schema() string {
	return c.schema
}

// Close releases the underlying connection.
func (c *Context) Close() error {
	return c.db.Close()
}
