package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func TestUploadFolder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.sql"), []byte("create schema x;"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "transform"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transform", "orders.parquet"), []byte{0x50, 0x41, 0x52, 0x31}, 0o644))

	store := newMemStore()
	require.NoError(t, UploadFolder(context.Background(), store, dir, "backups/nightly"))

	assert.Equal(t, []byte("create schema x;"), store.objects["backups/nightly/schema.sql"])
	assert.Len(t, store.objects["backups/nightly/transform/orders.parquet"], 4)
}

func TestDownloadFolderRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "load.sql"), []byte("import;"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "transform"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "transform", "report.parquet"), []byte("rows"), 0o644))

	store := newMemStore()
	require.NoError(t, UploadFolder(context.Background(), store, src, "backups/x"))

	dst := t.TempDir()
	require.NoError(t, DownloadFolder(context.Background(), store, "backups/x", dst))

	data, err := os.ReadFile(filepath.Join(dst, "load.sql"))
	require.NoError(t, err)
	assert.Equal(t, "import;", string(data))

	data, err = os.ReadFile(filepath.Join(dst, "transform", "report.parquet"))
	require.NoError(t, err)
	assert.Equal(t, "rows", string(data))
}

func TestDownloadFolderRejectsEscapingKeys(t *testing.T) {
	store := newMemStore()
	store.objects["backups/x/../../outside.sql"] = []byte("drop;")

	dst := t.TempDir()
	err := DownloadFolder(context.Background(), store, "backups/x", dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes the target directory")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dst), "outside.sql"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadFolderEmptyPrefix(t *testing.T) {
	store := newMemStore()
	err := DownloadFolder(context.Background(), store, "backups/missing", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no objects found")
}
