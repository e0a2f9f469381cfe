package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <id>",
	Short: "Show the path an evaluation takes through a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		lib, _, _, closeFn, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		ev, err := lib.Evaluator(args[0])
		if err != nil {
			return err
		}
		pairs, _ := cmd.Flags().GetStringArray("fact")
		facts, err := cli.ParseFacts(ev, pairs)
		if err != nil {
			return err
		}

		tr, evalErr := ev.Trace(ctx, facts)
		rendered, err := tui.RendererFor(os.Stdout)(tui.Explain(args[0], tr, evalErr))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return evalErr
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().StringArrayP("fact", "f", nil, "Fact as key=value (repeatable)")
}
