// Package storage defines the object-store collaborator used for
// database backup and restore: whole local folders are mirrored to and
// from a bucket prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrObjectNotFound is returned when a requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore is the minimal object-storage surface backup and restore
// need.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// UploadFolder uploads every file under localDir to the store, keyed by
// prefix plus the file's path relative to localDir.
func UploadFolder(ctx context.Context, store ObjectStore, localDir, prefix string) error {
	return filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		key := path.Join(prefix, filepath.ToSlash(rel))

		f, err := os.Open(p) //nolint:gosec // G304: path comes from the walked backup dir
		if err != nil {
			return fmt.Errorf("open %q: %w", p, err)
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return err
		}
		if err := store.Put(ctx, key, f, info.Size()); err != nil {
			return fmt.Errorf("upload %q: %w", key, err)
		}
		return nil
	})
}

// DownloadFolder downloads everything under prefix into localDir,
// recreating the relative layout.
func DownloadFolder(ctx context.Context, store ObjectStore, prefix, localDir string) error {
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		return fmt.Errorf("no objects found under prefix %q", prefix)
	}

	for _, obj := range objects {
		rel := filepath.FromSlash(strings.TrimPrefix(strings.TrimPrefix(obj.Key, prefix), "/"))
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("object key %q escapes the target directory", obj.Key)
		}
		local := filepath.Join(localDir, rel)
		if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
			return err
		}

		reader, err := store.Get(ctx, obj.Key)
		if err != nil {
			return fmt.Errorf("download %q: %w", obj.Key, err)
		}
		if err := writeFile(local, reader); err != nil {
			_ = reader.Close()
			return fmt.Errorf("write %q: %w", local, err)
		}
		if err := reader.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, reader io.Reader) error {
	f, err := os.Create(path) //nolint:gosec // G304: path is under the caller's restore dir
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
