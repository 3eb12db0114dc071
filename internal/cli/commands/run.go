package commands

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ductolabs/ducto/internal/engine"
	"github.com/ductolabs/ducto/internal/unit"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Materialize every transformation in dependency order",
		Long: `Build the dependency graph from the transformations folder and
materialize each unit as a table in the target schema, sources first.

The first failing unit aborts the run; tables materialized before the
failure persist.`,
		Example: `  # Run against the configured database
  ducto run

  # Run a specific folder into a specific database
  ducto run -f sql -d warehouse.db

  # Re-run automatically when unit files change
  ducto run --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			watch, _ := cmd.Flags().GetBool("watch")
			if watch {
				return watchAndRun(cmd, cmdCtx)
			}
			return runOnce(cmd, cmdCtx)
		},
	}

	cmd.Flags().Bool("watch", false, "Re-run when files in the transformations folder change")
	return cmd
}

func runOnce(cmd *cobra.Command, cmdCtx *CommandContext) error {
	engCfg, err := cmdCtx.EngineConfig()
	if err != nil {
		return err
	}

	run, err := engine.New(engCfg).Run(cmd.Context())
	if run != nil {
		renderRunSummary(cmd.OutOrStdout(), run)
	}
	return err
}

// renderRunSummary prints the per-unit outcome table.
func renderRunSummary(w io.Writer, run *engine.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Unit", "State", "Duration"})

	for _, res := range run.Results {
		duration := ""
		if res.State == engine.StateMaterialized || res.State == engine.StateFailed {
			duration = res.Duration.Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{res.Name, res.State.String(), duration})
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "%d materialized, %d skipped as sources\n",
		run.Materialized(), run.Skipped())
}

// watchAndRun runs once, then re-runs whenever a unit file changes.
func watchAndRun(cmd *cobra.Command, cmdCtx *CommandContext) error {
	logger := cmdCtx.Logger

	if err := runOnce(cmd, cmdCtx); err != nil {
		// Keep watching: the next edit may fix the failure.
		logger.Error("run failed", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, cmdCtx.Config.Folder); err != nil {
		return fmt.Errorf("watch %q: %w", cmdCtx.Config.Folder, err)
	}
	logger.Info("watching for changes", "folder", cmdCtx.Config.Folder)

	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !unit.Recognized(event.Name) {
				continue
			}
			logger.Debug("unit file changed", "file", event.Name)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			if err := runOnce(cmd, cmdCtx); err != nil {
				logger.Error("run failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
