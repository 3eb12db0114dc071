package sqlparse

import "fmt"

// ParseError represents a failure to tokenize or split the input.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// AmbiguousResultError is returned when a unit's query text contains
// more than one result-producing (SELECT-shaped) statement, so there is
// no single governing statement to materialize.
type AmbiguousResultError struct {
	Count int
}

func (e *AmbiguousResultError) Error() string {
	return fmt.Sprintf("ambiguous result: %d SELECT statements in one unit, only one is allowed", e.Count)
}
