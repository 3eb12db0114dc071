package dag

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ductolabs/ducto/internal/unit"
	"github.com/ductolabs/ducto/pkg/sqlparse"
)

// Build walks folder recursively, loads every recognized unit file and
// returns the execution graph. Unit names are filename stems; two files
// resolving to the same name is a DuplicateUnitError regardless of
// which subfolders they live in. Scripted units without a source query
// get an empty dependency set.
func Build(folder string, dialect sqlparse.Dialect) (*Graph, error) {
	graph := NewGraph()
	paths := make(map[string]string) // unit name -> defining file

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !unit.Recognized(path) {
			return nil
		}

		u, err := unit.Load(path)
		if err != nil {
			return err
		}

		if prev, ok := paths[u.Name]; ok {
			return &DuplicateUnitError{Name: u.Name, Paths: []string{prev, path}}
		}
		paths[u.Name] = path

		deps, err := unitDependencies(u, dialect)
		if err != nil {
			return fmt.Errorf("unit %q (%s): %w", u.Name, path, err)
		}
		graph.AddUnit(u, deps)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graph, nil
}

// unitDependencies runs the query analyzer over a unit's source query.
func unitDependencies(u *unit.Unit, dialect sqlparse.Dialect) ([]string, error) {
	sql, ok, err := u.SourceSQL()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return sqlparse.Dependencies(sql, dialect)
}
