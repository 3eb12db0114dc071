package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ductolabs/ducto/internal/engine"
	"github.com/ductolabs/ducto/internal/unit"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all transformation units and their dependencies",
		Example: `  # List units in the configured folder
  ducto list

  # List units in a specific folder
  ducto list -f sql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			engCfg, err := cmdCtx.EngineConfig()
			if err != nil {
				return err
			}

			graph, err := engine.New(engCfg).BuildGraph()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Unit", "Kind", "Dependencies"})

			for _, node := range graph.Nodes() {
				kind := "source"
				if !node.IsSource() {
					switch node.Unit.Kind {
					case unit.KindQuery:
						kind = "query"
					case unit.KindScripted:
						kind = "scripted"
					}
				}
				t.AppendRow(table.Row{node.Name, kind, strings.Join(node.Deps, ", ")})
			}
			t.Render()
			return nil
		},
	}
}
