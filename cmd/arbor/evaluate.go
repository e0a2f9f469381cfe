package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <id>",
	Short: "Evaluate a tree against facts",
	Long: `Evaluates the tree <id> against facts given as repeated --fact key=value flags
and prints the result as JSON.

With --facts-file, each line of the file (or stdin for "-") is a JSON object of
facts; lines are evaluated concurrently and one JSON result is printed per line.`,
	Args: cobra.ExactArgs(1),
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

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("facts-file"); path != "" {
			var in io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			limit, _ := cmd.Flags().GetInt("concurrency")
			failed, err := cli.EvaluateBatch(ctx, ev, in, out, limit)
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d evaluations failed", failed)
			}
			return nil
		}

		pairs, _ := cmd.Flags().GetStringArray("fact")
		facts, err := cli.ParseFacts(ev, pairs)
		if err != nil {
			return err
		}

		var payload any
		if withTrace, _ := cmd.Flags().GetBool("trace"); withTrace {
			tr, err := ev.Trace(ctx, facts)
			if err != nil {
				return err
			}
			payload = tr
		} else {
			res, err := ev.Evaluate(ctx, facts)
			if err != nil {
				return err
			}
			payload = res
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringArrayP("fact", "f", nil, "Fact as key=value (repeatable)")
	evaluateCmd.Flags().String("facts-file", "", "File of JSON facts, one object per line (- for stdin)")
	evaluateCmd.Flags().Int("concurrency", 8, "Maximum concurrent evaluations in batch mode")
	evaluateCmd.Flags().Bool("trace", false, "Include the visited nodes in the output")
}
