// Package unit loads transformation units from disk. A unit is either a
// plain SQL file, materialized from its query text, or a Starlark
// script exposing a single transformation capability.
package unit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind distinguishes plain query units from scripted units.
type Kind int

const (
	// KindQuery is a plain .sql file; its query text is the raw file contents.
	KindQuery Kind = iota
	// KindScripted is a .star file exposing a transformation capability.
	KindScripted
)

// Recognized file extensions.
const (
	ExtSQL    = ".sql"
	ExtScript = ".star"
)

// Unit is one named, materializable transformation definition.
type Unit struct {
	// Name is the filename stem; it doubles as the materialized table name.
	Name string
	// Path is the source file location.
	Path string
	Kind Kind

	rawSQL string
	script *Script
}

// Recognized reports whether path has a unit file extension.
func Recognized(path string) bool {
	switch filepath.Ext(path) {
	case ExtSQL, ExtScript:
		return true
	}
	return false
}

// Load reads the file at path and returns its transformation unit.
// Scripted files must expose exactly one transformation capability;
// zero or more than one is a fatal configuration error.
func Load(path string) (*Unit, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch filepath.Ext(path) {
	case ExtSQL:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read unit %q: %w", path, err)
		}
		return &Unit{Name: name, Path: path, Kind: KindQuery, rawSQL: string(raw)}, nil

	case ExtScript:
		script, err := loadScript(path)
		if err != nil {
			return nil, err
		}
		return &Unit{Name: name, Path: path, Kind: KindScripted, script: script}, nil

	default:
		return nil, fmt.Errorf("unrecognized unit file extension: %q", path)
	}
}

// SourceSQL returns the query text used for dependency analysis. For a
// scripted unit the text comes from its source_sql descriptor, which
// may be absent: such units declare no upstream dependencies beyond
// what run computes internally.
func (u *Unit) SourceSQL() (string, bool, error) {
	switch u.Kind {
	case KindQuery:
		return u.rawSQL, true, nil
	case KindScripted:
		return u.script.SourceSQL()
	}
	return "", false, fmt.Errorf("unit %q: unknown kind %d", u.Name, u.Kind)
}

// Run invokes a scripted unit's run callable and returns its tabular
// result. Calling Run on a query unit is a programming error.
func (u *Unit) Run(ctx ScriptContext) (*Result, error) {
	if u.Kind != KindScripted {
		return nil, fmt.Errorf("unit %q is not scripted", u.Name)
	}
	return u.script.Run(ctx)
}
