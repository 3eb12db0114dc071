package unit

import "fmt"

// NoCapabilityError is returned when a scripted file defines no
// transformation capability.
type NoCapabilityError struct {
	Path string
}

func (e *NoCapabilityError) Error() string {
	return fmt.Sprintf("no transformation found in script %q", e.Path)
}

// MultipleCapabilitiesError is returned when a scripted file defines
// more than one transformation capability; there must be exactly one.
type MultipleCapabilitiesError struct {
	Path  string
	Names []string
}

func (e *MultipleCapabilitiesError) Error() string {
	return fmt.Sprintf("multiple transformations found in script %q: %v, only one is allowed", e.Path, e.Names)
}

// ScriptError wraps a Starlark evaluation failure with the script path.
type ScriptError struct {
	Path string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %q: %v", e.Path, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
