package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ductolabs/ducto/internal/dag"
	"github.com/ductolabs/ducto/pkg/sqlparse"
)

func writeUnits(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// prepareSchema registers the schema expectations and consumes them
// immediately, so tests can queue their per-unit expectations after it.
func prepareSchema(t *testing.T, c *Context, mock sqlmock.Sqlmock) {
	t.Helper()
	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS transform").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("USE transform").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, c.EnsureSchema(context.Background(), "transform"))
}

func runGraph(t *testing.T, c *Context, folder string) (*RunResult, error) {
	t.Helper()
	graph, err := dag.Build(folder, sqlparse.DialectDuckDB)
	require.NoError(t, err)
	order, err := graph.Order()
	require.NoError(t, err)

	ex := NewExecutor(c, graph, nil)
	return ex.Run(context.Background(), order)
}

func TestRunMaterializesInDependencyOrder(t *testing.T) {
	folder := writeUnits(t, map[string]string{
		"report.sql":  "SELECT count(*) AS n FROM staging",
		"staging.sql": "SELECT * FROM raw_events",
	})
	c, mock := newMockContext(t)
	prepareSchema(t, c, mock)

	mock.ExpectExec("CREATE OR REPLACE TABLE transform.staging AS SELECT * FROM raw_events").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE OR REPLACE TABLE transform.report AS SELECT count(*) AS n FROM staging").
		WillReturnResult(sqlmock.NewResult(0, 0))

	run, err := runGraph(t, c, folder)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Materialized())
	assert.Equal(t, 1, run.Skipped())

	require.Len(t, run.Results, 3)
	assert.Equal(t, "raw_events", run.Results[0].Name)
	assert.Equal(t, StateSkippedAsSource, run.Results[0].State)
	assert.Equal(t, "staging", run.Results[1].Name)
	assert.Equal(t, StateMaterialized, run.Results[1].State)
	assert.Equal(t, "report", run.Results[2].Name)
	assert.Equal(t, StateMaterialized, run.Results[2].State)
}

func TestRunExecutesSetupStatementsVerbatim(t *testing.T) {
	folder := writeUnits(t, map[string]string{
		"enriched.sql": "SET memory_limit = '1GB';\nSELECT * FROM raw_events",
	})
	c, mock := newMockContext(t)
	prepareSchema(t, c, mock)

	mock.ExpectExec("SET memory_limit = '1GB'").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE OR REPLACE TABLE transform.enriched AS SELECT * FROM raw_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	run, err := runGraph(t, c, folder)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, run.Materialized())
}

func TestRunMutatingGoverningStatementVerbatim(t *testing.T) {
	folder := writeUnits(t, map[string]string{
		"loaded.sql": "CREATE TABLE IF NOT EXISTS staging_raw (id INTEGER);\nINSERT INTO staging_raw SELECT * FROM src",
	})
	c, mock := newMockContext(t)
	prepareSchema(t, c, mock)

	// An INSERT is not a valid CTAS source: it must run as written,
	// never wrapped in CREATE OR REPLACE TABLE ... AS.
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS staging_raw (id INTEGER)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO staging_raw SELECT * FROM src").
		WillReturnResult(sqlmock.NewResult(1, 1))

	run, err := runGraph(t, c, folder)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, run.Materialized())
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	folder := writeUnits(t, map[string]string{
		"a.sql": "SELECT * FROM raw_events",
		"b.sql": "SELECT * FROM a",
		"c.sql": "SELECT * FROM b",
	})
	c, mock := newMockContext(t)
	prepareSchema(t, c, mock)

	boom := errors.New("binder error")
	mock.ExpectExec("CREATE OR REPLACE TABLE transform.a AS SELECT * FROM raw_events").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE OR REPLACE TABLE transform.b AS SELECT * FROM a").
		WillReturnError(boom)

	run, err := runGraph(t, c, folder)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `unit "b"`)

	// c was never attempted: raw_events skipped, a materialized, b failed.
	require.Len(t, run.Results, 3)
	assert.Equal(t, StateFailed, run.Results[2].State)
	assert.Equal(t, "b", run.Results[2].Name)
	assert.Equal(t, 1, run.Materialized())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunScriptedUnitFromRows(t *testing.T) {
	folder := writeUnits(t, map[string]string{
		"regions.star": `def build(ctx):
    return [
        {"id": 1, "region": "north"},
        {"id": 2, "region": "south"},
    ]

t = transformation(run = build)
`,
	})
	c, mock := newMockContext(t)
	prepareSchema(t, c, mock)

	mock.ExpectExec(`CREATE OR REPLACE TABLE transform.regions AS SELECT * FROM (VALUES (1, 'north'), (2, 'south')) AS _rel("id", "region")`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	run, err := runGraph(t, c, folder)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, run.Materialized())
}

func TestRunScriptedUnitFromQueryString(t *testing.T) {
	folder := writeUnits(t, map[string]string{
		"raw_orders.sql": "SELECT 1 AS id",
		"totals.star": `def build(ctx):
    return "SELECT id, count(*) AS n FROM " + ctx.schema + ".raw_orders GROUP BY id"

def deps():
    return "SELECT * FROM raw_orders"

t = transformation(run = build, source_sql = deps)
`,
	})
	c, mock := newMockContext(t)
	prepareSchema(t, c, mock)

	mock.ExpectExec("CREATE OR REPLACE TABLE transform.raw_orders AS SELECT 1 AS id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE OR REPLACE TABLE transform.totals AS SELECT * FROM (SELECT id, count(*) AS n FROM transform.raw_orders GROUP BY id) AS _rel").
		WillReturnResult(sqlmock.NewResult(0, 0))

	run, err := runGraph(t, c, folder)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 2, run.Materialized())
}

func TestRunInterpolatesEnvPlaceholders(t *testing.T) {
	t.Setenv("DUCTO_TEST_SOURCE", "raw_events")
	folder := writeUnits(t, map[string]string{
		"mirror.sql": "SELECT * FROM {{ DUCTO_TEST_SOURCE }}",
	})
	c, mock := newMockContext(t)
	prepareSchema(t, c, mock)

	mock.ExpectExec("CREATE OR REPLACE TABLE transform.mirror AS SELECT * FROM raw_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	run, err := runGraph(t, c, folder)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, run.Materialized())
}
