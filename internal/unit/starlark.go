package unit

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Transformation is the capability value produced by the predeclared
// transformation() builtin. A scripted unit must bind exactly one of
// these to a global; the global's name is irrelevant.
type Transformation struct {
	run       starlark.Callable
	sourceSQL starlark.Value // None, a string, or a callable
	frozen    bool
}

var _ starlark.Value = (*Transformation)(nil)

func (t *Transformation) String() string        { return "<transformation>" }
func (t *Transformation) Type() string          { return "transformation" }
func (t *Transformation) Truth() starlark.Bool  { return starlark.True }
func (t *Transformation) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: transformation") }

func (t *Transformation) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	t.run.Freeze()
	if t.sourceSQL != nil {
		t.sourceSQL.Freeze()
	}
}

// Script is a loaded scripted unit: the file plus its single capability.
type Script struct {
	path string
	decl *Transformation
}

// predeclared returns the globals available to every unit script.
func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"transformation": starlark.NewBuiltin("transformation", newTransformation),
	}
}

// newTransformation implements the transformation(run, source_sql=None) builtin.
func newTransformation(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var run starlark.Callable
	sourceSQL := starlark.Value(starlark.None)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "run", &run, "source_sql?", &sourceSQL); err != nil {
		return nil, err
	}
	switch sourceSQL.(type) {
	case starlark.NoneType, starlark.String, starlark.Callable:
	default:
		return nil, fmt.Errorf("%s: source_sql must be a string, a callable or None, got %s", b.Name(), sourceSQL.Type())
	}
	return &Transformation{run: run, sourceSQL: sourceSQL}, nil
}

// loadScript executes the Starlark file at path and locates its single
// transformation capability.
func loadScript(path string) (*Script, error) {
	thread := newThread(path)
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, nil, predeclared())
	if err != nil {
		return nil, &ScriptError{Path: path, Err: err}
	}

	var names []string
	for name, value := range globals {
		if _, ok := value.(*Transformation); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	switch len(names) {
	case 0:
		return nil, &NoCapabilityError{Path: path}
	case 1:
		decl := globals[names[0]].(*Transformation)
		return &Script{path: path, decl: decl}, nil
	default:
		return nil, &MultipleCapabilitiesError{Path: path, Names: names}
	}
}

// SourceSQL resolves the capability's source_sql descriptor. The second
// return value is false when the script declares no source query.
func (s *Script) SourceSQL() (string, bool, error) {
	switch v := s.decl.sourceSQL.(type) {
	case starlark.NoneType, nil:
		return "", false, nil
	case starlark.String:
		return string(v), true, nil
	case starlark.Callable:
		result, err := starlark.Call(newThread(s.path), v, nil, nil)
		if err != nil {
			return "", false, &ScriptError{Path: s.path, Err: err}
		}
		str, ok := result.(starlark.String)
		if !ok {
			return "", false, &ScriptError{Path: s.path, Err: fmt.Errorf("source_sql returned %s, want string", result.Type())}
		}
		return string(str), true, nil
	default:
		return "", false, &ScriptError{Path: s.path, Err: fmt.Errorf("source_sql has unsupported type %s", v.Type())}
	}
}

// Run calls the capability's run callable with a context value wrapping
// ctx and interprets the returned tabular result.
func (s *Script) Run(ctx ScriptContext) (*Result, error) {
	value, err := starlark.Call(newThread(s.path), s.decl.run, starlark.Tuple{newContextValue(ctx)}, nil)
	if err != nil {
		return nil, &ScriptError{Path: s.path, Err: err}
	}
	result, err := resultFromStarlark(value)
	if err != nil {
		return nil, &ScriptError{Path: s.path, Err: err}
	}
	return result, nil
}

// resultFromStarlark converts a run() return value into a Result.
// Accepted shapes: a SELECT string, or a list of row dicts.
func resultFromStarlark(value starlark.Value) (*Result, error) {
	switch v := value.(type) {
	case starlark.String:
		if string(v) == "" {
			return nil, fmt.Errorf("run returned an empty query string")
		}
		return &Result{Query: string(v)}, nil

	case *starlark.List:
		if v.Len() == 0 {
			return nil, fmt.Errorf("run returned no rows")
		}
		var columns []string
		rows := make([][]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			dict, ok := v.Index(i).(*starlark.Dict)
			if !ok {
				return nil, fmt.Errorf("row %d: want dict, got %s", i, v.Index(i).Type())
			}
			if columns == nil {
				for _, item := range dict.Items() {
					key, ok := item[0].(starlark.String)
					if !ok {
						return nil, fmt.Errorf("row %d: column name must be a string, got %s", i, item[0].Type())
					}
					columns = append(columns, string(key))
				}
			}
			row := make([]any, len(columns))
			for j, col := range columns {
				sv, found, err := dict.Get(starlark.String(col))
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
				if !found {
					return nil, fmt.Errorf("row %d: missing column %q", i, col)
				}
				gv, err := starlarkToGo(sv)
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", i, col, err)
				}
				row[j] = gv
			}
			rows = append(rows, row)
		}
		return &Result{Columns: columns, Rows: rows}, nil

	default:
		return nil, fmt.Errorf("run returned %s, want a query string or a list of row dicts", value.Type())
	}
}

// newThread creates a Starlark thread for one evaluation.
func newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
}
