package engine

import "fmt"

// MissingEnvVarError is returned in strict resolution mode when the
// executed text contains a {{ name }} placeholder with no corresponding
// environment variable.
type MissingEnvVarError struct {
	Name string
}

func (e *MissingEnvVarError) Error() string {
	return fmt.Sprintf("environment variable %q is not set", e.Name)
}

// EngineError wraps an execution failure reported by the database engine.
type EngineError struct {
	SQL string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine execution failed: %v", e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
