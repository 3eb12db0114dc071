package dag

import (
	"fmt"
	"strings"
)

// DuplicateUnitError is returned when two files in the folder resolve
// to the same unit name. Unit names must be unique across the whole
// folder tree; silently letting one file win would make runs depend on
// filesystem walk order.
type DuplicateUnitError struct {
	Name  string
	Paths []string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("duplicate unit name %q: defined by %s", e.Name, strings.Join(e.Paths, " and "))
}

// CycleError is returned when the dependency graph is not acyclic.
// Nodes holds one offending cycle, first node repeated at the end.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Nodes, " -> "))
}
