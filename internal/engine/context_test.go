package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockContext(t *testing.T, opts ...ContextOption) (*Context, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewContext(db, opts...), mock
}

func TestInterpolate(t *testing.T) {
	t.Setenv("DUCTO_TEST_BUCKET", "s3://lake/raw")
	c, _ := newMockContext(t)

	out, err := c.Interpolate("SELECT * FROM read_parquet('{{ DUCTO_TEST_BUCKET }}/orders.parquet')")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM read_parquet('s3://lake/raw/orders.parquet')", out)
}

func TestInterpolateStrictMissing(t *testing.T) {
	c, _ := newMockContext(t)

	_, err := c.Interpolate("SELECT '{{ DUCTO_TEST_ABSENT }}'")
	require.Error(t, err)

	var missing *MissingEnvVarError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "DUCTO_TEST_ABSENT", missing.Name)
}

func TestInterpolateLenientFallback(t *testing.T) {
	c, _ := newMockContext(t, WithResolution(ResolveLenient, "default"))

	out, err := c.Interpolate("SELECT '{{ DUCTO_TEST_ABSENT }}'")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'default'", out)
}

func TestInterpolateNoPlaceholders(t *testing.T) {
	c, _ := newMockContext(t)

	out, err := c.Interpolate("SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)
}

func TestExecInterpolatesBeforeExecuting(t *testing.T) {
	t.Setenv("DUCTO_TEST_SCHEMA", "staging")
	c, mock := newMockContext(t)

	mock.ExpectExec("USE staging").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, c.Exec(context.Background(), "USE {{ DUCTO_TEST_SCHEMA }}"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecWrapsDatabaseError(t *testing.T) {
	c, mock := newMockContext(t)

	boom := errors.New("catalog error")
	mock.ExpectExec("SELECT nope").WillReturnError(boom)

	err := c.Exec(context.Background(), "SELECT nope")
	require.Error(t, err)

	var engErr *EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "SELECT nope", engErr.SQL)
	assert.ErrorIs(t, err, boom)
}

func TestQueryReturnsColumnsAndRows(t *testing.T) {
	c, mock := newMockContext(t)

	mock.ExpectQuery("SELECT id, region FROM regions").WillReturnRows(
		sqlmock.NewRows([]string{"id", "region"}).
			AddRow(int64(1), "north").
			AddRow(int64(2), "south"))

	cols, rows, err := c.Query(context.Background(), "SELECT id, region FROM regions")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "region"}, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{int64(1), "north"}, rows[0])
	assert.Equal(t, []any{int64(2), "south"}, rows[1])
}

func TestEnsureSchema(t *testing.T) {
	c, mock := newMockContext(t)

	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS transform").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("USE transform").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, c.EnsureSchema(context.Background(), "transform"))
	assert.Equal(t, "transform", c.Schema())
	assert.NoError(t, mock.ExpectationsWereMet())
}
