package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ductolabs/ducto/internal/dag"
	"github.com/ductolabs/ducto/internal/engine"
)

// NewDAGCommand creates the dag command.
func NewDAGCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dag",
		Short: "Show the dependency graph",
		Long: `Display the dependency graph of all transformation units without
executing anything.

The text format lists each unit with its dependencies in execution
order. The mermaid format emits a flowchart suitable for pasting into
any mermaid renderer.`,
		Example: `  # Show the graph in execution order
  ducto dag

  # Emit a mermaid flowchart
  ducto dag --format mermaid

  # Write the flowchart to a file
  ducto dag --format mermaid --output lineage.mmd`,
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

			w := cmd.OutOrStdout()
			if output, _ := cmd.Flags().GetString("output"); output != "" {
				f, err := os.Create(output) //nolint:gosec // G304: user-chosen output file
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "mermaid":
				_, _ = fmt.Fprint(w, dag.Mermaid(graph))
				return nil
			case "text":
				return dagText(w, graph)
			}
			return fmt.Errorf("unknown format %q (want text or mermaid)", format)
		},
	}

	cmd.Flags().String("format", "text", "Output format (text|mermaid)")
	cmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
	return cmd
}

// dagText prints units in execution order, one per line with deps.
func dagText(w io.Writer, graph *dag.Graph) error {
	order, err := graph.Order()
	if err != nil {
		return err
	}

	for _, name := range order {
		node, ok := graph.Node(name)
		if !ok || node.IsSource() {
			_, _ = fmt.Fprintf(w, "%s (source)\n", name)
			continue
		}
		if len(node.Deps) == 0 {
			_, _ = fmt.Fprintln(w, name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s <- %s\n", name, strings.Join(node.Deps, ", "))
	}
	return nil
}
