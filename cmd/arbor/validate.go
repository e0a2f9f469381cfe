package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/document"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Compile documents and report configuration errors",
	Long: `Compiles a single document file, or every document of the configured source,
and reports each one that fails to build. All documents are checked; the command
fails if any of them is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if len(args) > 0 {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return validateFile(cmd, args[0])
			}
			cfg.Dir = args[0]
		}

		loader, closeFn, err := cli.NewLoader(sourceOptions(cfg))
		if err != nil {
			return err
		}
		defer closeFn()

		ctx := context.Background()
		ids, err := loader.ListDocuments(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range ids {
			doc, err := loader.LoadDocument(ctx, id)
			if err == nil {
				_, err = arbor.New(doc, arbor.WithOpenResults(true))
			}
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s %s: %v\n", tui.Status(false, "✗"), id, err)
				continue
			}
			fmt.Fprintf(out, "%s %s\n", tui.Status(true, "✓"), id)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d documents are invalid", failed, len(ids))
		}
		fmt.Fprintf(out, "%d documents are valid\n", len(ids))
		return nil
	},
}

func validateFile(cmd *cobra.Command, path string) error {
	doc, err := document.ParseFile(path)
	if err != nil {
		return err
	}
	if _, err := arbor.New(doc, arbor.WithOpenResults(true)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tui.Status(true, "✓"), path)
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
