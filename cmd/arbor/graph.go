package main

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <id>",
	Short: "Export the tree visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the tree <id>. When facts are given,
the path they take is highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		lib, _, logger, closeFn, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		ev, err := lib.Evaluator(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if pairs, _ := cmd.Flags().GetStringArray("fact"); len(pairs) > 0 {
			facts, err := cli.ParseFacts(ev, pairs)
			if err != nil {
				return err
			}
			tr, err := ev.Trace(ctx, facts)
			if err != nil {
				// The partial path is still worth drawing.
				logger.Warn("evaluation stopped early", "tree", args[0], "err", err)
			}
			overlay = graph.OverlayFromTrace(ev.Tree(), tr)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(ev.Tree(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringArrayP("fact", "f", nil, "Fact as key=value to highlight its path (repeatable)")
}
