package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/ductolabs/ducto/internal/storage"
)

// Backup exports the whole database as parquet and mirrors the export
// to the object store under prefix.
func Backup(ctx context.Context, databasePath string, store storage.ObjectStore, prefix string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	exportDir, err := os.MkdirTemp("", "ducto-backup-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(exportDir) }()

	db, err := sql.Open("duckdb", databasePath)
	if err != nil {
		return fmt.Errorf("open database %q: %w", databasePath, err)
	}
	defer func() { _ = db.Close() }()

	export := fmt.Sprintf("EXPORT DATABASE '%s' (FORMAT 'parquet')", escapeSingleQuotes(exportDir))
	logger.Debug("exporting database", "path", databasePath, "dir", exportDir)
	if _, err := db.ExecContext(ctx, export); err != nil {
		return &EngineError{SQL: export, Err: err}
	}

	logger.Info("uploading backup", "prefix", prefix)
	return storage.UploadFolder(ctx, store, exportDir, prefix)
}

// Restore downloads the export under prefix and imports it into the
// database at databasePath. With overwrite set, an existing database
// file is deleted first; otherwise restoring over an existing file is
// an error.
func Restore(ctx context.Context, databasePath string, store storage.ObjectStore, prefix string, overwrite bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if _, err := os.Stat(databasePath); err == nil {
		if !overwrite {
			return fmt.Errorf("database %q already exists, pass overwrite to replace it", databasePath)
		}
		logger.Warn("deleting existing database", "path", databasePath)
		if err := os.Remove(databasePath); err != nil {
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	importDir, err := os.MkdirTemp("", "ducto-restore-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(importDir) }()

	logger.Info("downloading backup", "prefix", prefix)
	if err := storage.DownloadFolder(ctx, store, prefix, importDir); err != nil {
		return err
	}

	db, err := sql.Open("duckdb", databasePath)
	if err != nil {
		return fmt.Errorf("open database %q: %w", databasePath, err)
	}
	defer func() { _ = db.Close() }()

	stmt := fmt.Sprintf("IMPORT DATABASE '%s'", escapeSingleQuotes(importDir))
	logger.Debug("importing database", "dir", importDir)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return &EngineError{SQL: stmt, Err: err}
	}
	return nil
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
