package unit

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
)

// ScriptContext is the execution surface handed to scripted units. The
// engine's execution context implements it; scripts never touch the
// database connection directly.
type ScriptContext interface {
	// Exec runs a statement through the execution context, including
	// environment-variable interpolation.
	Exec(sql string) error
	// Query runs a query and returns column names plus row values.
	Query(sql string) (columns []string, rows [][]any, err error)
	// Schema returns the active schema name.
	Schema() string
}

// contextValue exposes a ScriptContext to Starlark as an object with
// sql(), query() and a schema attribute.
type contextValue struct {
	ctx ScriptContext
}

var _ starlark.HasAttrs = (*contextValue)(nil)

func newContextValue(ctx ScriptContext) *contextValue {
	return &contextValue{ctx: ctx}
}

func (c *contextValue) String() string        { return "<run context>" }
func (c *contextValue) Type() string          { return "context" }
func (c *contextValue) Freeze()               {}
func (c *contextValue) Truth() starlark.Bool  { return starlark.True }
func (c *contextValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: context") }

func (c *contextValue) AttrNames() []string {
	names := []string{"query", "schema", "sql"}
	sort.Strings(names)
	return names
}

func (c *contextValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "schema":
		return starlark.String(c.ctx.Schema()), nil
	case "sql":
		return starlark.NewBuiltin("sql", c.sqlBuiltin), nil
	case "query":
		return starlark.NewBuiltin("query", c.queryBuiltin), nil
	}
	return nil, nil
}

// sqlBuiltin implements ctx.sql(text): execute a statement for its side
// effects.
func (c *contextValue) sqlBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}
	if err := c.ctx.Exec(text); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// queryBuiltin implements ctx.query(text) -> list of row dicts.
func (c *contextValue) queryBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}
	columns, rows, err := c.ctx.Query(text)
	if err != nil {
		return nil, err
	}

	out := make([]starlark.Value, 0, len(rows))
	for _, row := range rows {
		dict := starlark.NewDict(len(columns))
		for i, col := range columns {
			sv, err := goToStarlark(row[i])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col, err)
			}
			if err := dict.SetKey(starlark.String(col), sv); err != nil {
				return nil, err
			}
		}
		out = append(out, dict)
	}
	return starlark.NewList(out), nil
}
