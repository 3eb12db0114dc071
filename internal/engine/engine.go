package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb database/sql driver

	"github.com/ductolabs/ducto/internal/dag"
	"github.com/ductolabs/ducto/pkg/sqlparse"
)

// Config holds everything a run needs.
type Config struct {
	// DatabasePath is the DuckDB database file (empty for in-memory).
	DatabasePath string
	// Folder contains the transformation unit files.
	Folder string
	// Schema is the target schema for materializations.
	Schema string
	// Dialect is the SQL dialect used for dependency analysis.
	Dialect sqlparse.Dialect
	// Resolution is the placeholder resolution policy.
	Resolution ResolutionMode
	// ResolutionDefault is substituted for unresolved placeholders in
	// lenient mode.
	ResolutionDefault string
	// Logger is the structured logger (discard handler if nil).
	Logger *slog.Logger
}

// Engine is the run entry point: graph build, schedule, pre-queries and
// executor run, returning on the first fatal error.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an engine, applying defaults for schema, dialect and logger.
func New(cfg Config) *Engine {
	if cfg.Schema == "" {
		cfg.Schema = "transform"
	}
	if cfg.Dialect == "" {
		cfg.Dialect = sqlparse.DialectDuckDB
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, logger: logger}
}

// BuildGraph walks the configured folder and returns the execution graph.
func (e *Engine) BuildGraph() (*dag.Graph, error) {
	return dag.Build(e.cfg.Folder, e.cfg.Dialect)
}

// Run builds the graph, computes the execution order, prepares the
// schema and materializes every unit. The connection is released when
// the run ends, successfully or not.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	graph, err := e.BuildGraph()
	if err != nil {
		return nil, err
	}
	order, err := graph.Order()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", e.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", e.cfg.DatabasePath, err)
	}

	execCtx := NewContext(db,
		WithResolution(e.cfg.Resolution, e.cfg.ResolutionDefault),
		WithLogger(e.logger),
	)
	defer func() { _ = execCtx.Close() }()

	if err := execCtx.EnsureSchema(ctx, e.cfg.Schema); err != nil {
		return nil, err
	}

	executor := NewExecutor(execCtx, graph, e.logger)
	return executor.Run(ctx, order)
}
