package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/pkg/document"
	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Reformat a document, optionally converting between YAML and JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		doc, err := document.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		format, ok := document.FormatFor(path)
		if to, _ := cmd.Flags().GetString("to"); to != "" {
			format, ok = document.Format(to), true
		}
		if !ok {
			return fmt.Errorf("cannot infer format of %s; use --to", path)
		}

		data, err = document.Marshal(doc, format)
		if err != nil {
			return err
		}

		if write, _ := cmd.Flags().GetBool("write"); write {
			return os.WriteFile(path, data, 0o644)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().String("to", "", "Output format: yaml or json")
	fmtCmd.Flags().BoolP("write", "w", false, "Write the result back to the file")
}
