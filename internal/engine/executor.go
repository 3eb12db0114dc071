package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ductolabs/ducto/internal/dag"
	"github.com/ductolabs/ducto/internal/unit"
	"github.com/ductolabs/ducto/pkg/sqlparse"
)

// State is a node's position in the executor state machine.
type State int

const (
	StatePending State = iota
	StateRunning
	StateMaterialized
	StateSkippedAsSource
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateMaterialized:
		return "materialized"
	case StateSkippedAsSource:
		return "skipped (source)"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// NodeResult is the per-node outcome of a run.
type NodeResult struct {
	Name     string
	State    State
	Duration time.Duration
	Err      error
}

// RunResult summarizes one executor run.
type RunResult struct {
	ID      string
	Results []NodeResult
	Err     error
}

// Materialized counts nodes that were materialized.
func (r *RunResult) Materialized() int {
	return r.count(StateMaterialized)
}

// Skipped counts nodes skipped as pre-existing sources.
func (r *RunResult) Skipped() int {
	return r.count(StateSkippedAsSource)
}

func (r *RunResult) count(state State) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}

// Executor materializes units one at a time in scheduler order. A node
// failure is terminal for the whole run; tables materialized before the
// failing node persist.
type Executor struct {
	context *Context
	graph   *dag.Graph
	logger  *slog.Logger
}

// NewExecutor creates an executor over the given context and graph.
func NewExecutor(c *Context, graph *dag.Graph, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{context: c, graph: graph, logger: logger}
}

// Run processes every node in order. Names with no matching unit are
// skipped as sources; the first failure aborts the remaining schedule
// and is returned alongside the partial result.
func (e *Executor) Run(ctx context.Context, order []string) (*RunResult, error) {
	run := &RunResult{ID: uuid.NewString()}
	e.logger.Info("starting run", "run_id", run.ID, "objects", len(order))

	for _, name := range order {
		node, ok := e.graph.Node(name)
		if !ok || node.IsSource() {
			e.logger.Info("identified source", "object", name)
			run.Results = append(run.Results, NodeResult{Name: name, State: StateSkippedAsSource})
			continue
		}

		e.logger.Info("materializing", "object", name, "kind", node.Unit.Kind)
		start := time.Now()

		var err error
		switch node.Unit.Kind {
		case unit.KindQuery:
			err = e.runQueryUnit(ctx, node.Unit)
		case unit.KindScripted:
			err = e.runScriptedUnit(ctx, node.Unit)
		default:
			err = fmt.Errorf("unit %q: unknown kind %d", node.Unit.Name, node.Unit.Kind)
		}

		elapsed := time.Since(start)
		if err != nil {
			e.logger.Error("run failed", "run_id", run.ID, "object", name, "error", err)
			run.Results = append(run.Results, NodeResult{Name: name, State: StateFailed, Duration: elapsed, Err: err})
			run.Err = fmt.Errorf("unit %q: %w", name, err)
			return run, run.Err
		}

		e.logger.Info("materialized", "object", name, "duration_ms", elapsed.Milliseconds())
		run.Results = append(run.Results, NodeResult{Name: name, State: StateMaterialized, Duration: elapsed})
	}

	e.logger.Info("run completed", "run_id", run.ID,
		"materialized", run.Materialized(), "skipped", run.Skipped())
	return run, nil
}

// runQueryUnit re-parses the unit's query text, executes setup
// statements verbatim and materializes the governing statement. A
// mutating governing statement (INSERT, COPY, ...) is not a valid
// CREATE TABLE AS source, so it runs verbatim too.
func (e *Executor) runQueryUnit(ctx context.Context, u *unit.Unit) error {
	text, _, err := u.SourceSQL()
	if err != nil {
		return err
	}

	stmts, err := sqlparse.SplitStatements(text)
	if err != nil {
		return err
	}
	governing, setup, err := sqlparse.Governing(stmts)
	if err != nil {
		return err
	}

	for _, stmt := range setup {
		if err := e.context.Exec(ctx, stmt.Text); err != nil {
			return err
		}
	}
	if governing.Kind == sqlparse.StmtMutating {
		return e.context.Exec(ctx, governing.Text)
	}
	return e.context.Exec(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s.%s AS %s",
		e.context.Schema(), u.Name, governing.Text))
}

// runScriptedUnit invokes the unit's run callable, registers its result
// as a queryable relation and materializes from it.
func (e *Executor) runScriptedUnit(ctx context.Context, u *unit.Unit) error {
	result, err := u.Run(&scriptContext{ctx: ctx, ec: e.context})
	if err != nil {
		return err
	}
	relation, err := result.RelationSQL()
	if err != nil {
		return fmt.Errorf("unit %q: %w", u.Name, err)
	}
	return e.context.Exec(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s.%s AS SELECT * FROM %s",
		e.context.Schema(), u.Name, relation))
}

// scriptContext adapts Context to the surface scripted units see,
// binding the run's cancellation context.
type scriptContext struct {
	ctx context.Context
	ec  *Context
}

var _ unit.ScriptContext = (*scriptContext)(nil)

func (s *scriptContext) Exec(sql string) error {
	return s.ec.Exec(s.ctx, sql)
}

func (s *scriptContext) Query(sql string) ([]string, [][]any, error) {
	return s.ec.Query(s.ctx, sql)
}

func (s *scriptContext) Schema() string {
	return s.ec.Schema()
}
