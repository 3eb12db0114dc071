package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreRefusesExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "warehouse.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("existing"), 0o644))

	err := Restore(context.Background(), dbPath, nil, "backups/x", false, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// The refused restore must leave the file untouched.
	data, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestEscapeSingleQuotes(t *testing.T) {
	assert.Equal(t, "/tmp/plain", escapeSingleQuotes("/tmp/plain"))
	assert.Equal(t, "/tmp/it''s", escapeSingleQuotes("/tmp/it's"))
}
