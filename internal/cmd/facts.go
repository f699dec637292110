package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctxpack/internal/output"
	"github.com/hargabyte/ctxpack/internal/pipeline"
)

// factsCmd represents the facts command
var factsCmd = &cobra.Command{
	Use:   "facts <file>",
	Short: "Dump the facts extracted for a selection",
	Long: `Parse a Java file and print the facts extracted for the selected lines:
the enclosing method, class, file and project, plus the identifiers, calls,
code pattern and semantic features of the selection itself.

This is what 'assemble' feeds into context packing. The output is yaml
unless --format json is given.`,
	Example: `  ctxpack facts src/main/java/com/shop/Cart.java --lines 12-18
  ctxpack facts Cart.java --lines 12-18 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runFacts,
}

var (
	factsLines   string
	factsProject string
)

func init() {
	rootCmd.AddCommand(factsCmd)
	factsCmd.Flags().StringVarP(&factsLines, "lines", "l", "", "Selected line range, 1-based and inclusive (e.g. 10-20)")
	factsCmd.Flags().StringVar(&factsProject, "project", "", "Project root directory (default: nearest build file)")
	factsCmd.MarkFlagRequired("lines")
}

func runFacts(cmd *cobra.Command, args []string) error {
	start, end, err := parseLineRange(factsLines)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Facts have no text rendering.
	format := output.FormatYAML
	if cmd.Flags().Changed("format") {
		if format, err = output.ParseFormat(outputFormat); err != nil {
			return err
		}
		if !format.Structured() {
			return fmt.Errorf("facts output must be yaml or json, got %s", format)
		}
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	sel, err := pipeline.New(cfg, logger).Facts(commandContext(cmd), pipeline.Request{
		File:        args[0],
		StartLine:   start,
		EndLine:     end,
		ProjectRoot: factsProject,
	})
	if err != nil {
		return fmt.Errorf("facts %s: %w", args[0], err)
	}

	return writeOutput(cmd.OutOrStdout(), format, sel)
}
