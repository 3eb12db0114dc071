// Package commands implements the individual CLI commands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ductolabs/ducto/internal/config"
	"github.com/ductolabs/ducto/internal/engine"
	"github.com/ductolabs/ducto/internal/logging"
	"github.com/ductolabs/ducto/pkg/sqlparse"
)

// CommandContext bundles what every command needs: the layered
// configuration and a logger writing to the command's stderr.
type CommandContext struct {
	Config *config.Config
	Logger *slog.Logger
}

// NewCommandContext loads configuration from the command's flags and
// builds the logger.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), logging.Options{
		Format:  cfg.LogFormat,
		Verbose: cfg.Verbose,
	})
	return &CommandContext{Config: cfg, Logger: logger}, nil
}

// EngineConfig translates the loaded configuration into an engine run
// configuration.
func (c *CommandContext) EngineConfig() (engine.Config, error) {
	mode, err := c.Config.ResolutionMode()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		DatabasePath:      c.Config.Database,
		Folder:            c.Config.Folder,
		Schema:            c.Config.Schema,
		Dialect:           sqlparse.Dialect(c.Config.Dialect),
		Resolution:        mode,
		ResolutionDefault: c.Config.ResolutionDefault,
		Logger:            c.Logger,
	}, nil
}
