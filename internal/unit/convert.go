package unit

import (
	"fmt"
	"time"

	"go.starlark.net/starlark"
)

// goToStarlark converts a Go value from a database row into a Starlark
// value. Supported types: nil, string, bool, integers, floats, []byte,
// time.Time.
func goToStarlark(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case string:
		return starlark.String(val), nil
	case []byte:
		return starlark.String(string(val)), nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int32:
		return starlark.MakeInt64(int64(val)), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float32:
		return starlark.Float(float64(val)), nil
	case float64:
		return starlark.Float(val), nil
	case time.Time:
		return starlark.String(val.Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// starlarkToGo converts a Starlark row value back to a Go value.
// Returns nil, string, bool, int64 or float64.
func starlarkToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			return nil, fmt.Errorf("integer too large: %s", val.String())
		}
		return i64, nil
	case starlark.Float:
		return float64(val), nil
	default:
		return nil, fmt.Errorf("unsupported row value type %s", v.Type())
	}
}
