package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/ctxpack/internal/output"
	"github.com/hargabyte/ctxpack/internal/pipeline"
)

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:   "assemble <file>",
	Short: "Build the layered context and prompt for a selection",
	Long: `Parse a Java file, extract the facts around the selected lines, pack them
into a token-budgeted layered context and render the prompt.

The text format prints the prompt document. The yaml and json formats print
the full result: per-layer token estimates and truncation flags, related
methods with their relevance scores, the prompt and its token usage.

The project root is the nearest directory above the file holding a
pom.xml, build.gradle or build.gradle.kts. Use --project to override it.`,
	Example: `  ctxpack assemble src/main/java/com/shop/Cart.java --lines 12-18 --instruction "optimize this"
  ctxpack assemble Cart.java --lines 30 --instruction "why does this throw?" --format yaml
  ctxpack assemble Cart.java --lines 12-18 --format json --density dense`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

var (
	assembleLines       string
	assembleInstruction string
	assembleProject     string
)

func init() {
	rootCmd.AddCommand(assembleCmd)
	assembleCmd.Flags().StringVarP(&assembleLines, "lines", "l", "", "Selected line range, 1-based and inclusive (e.g. 10-20)")
	assembleCmd.Flags().StringVarP(&assembleInstruction, "instruction", "i", "", "Instruction for the model (e.g. \"optimize this\")")
	assembleCmd.Flags().StringVar(&assembleProject, "project", "", "Project root directory (default: nearest build file)")
	assembleCmd.MarkFlagRequired("lines")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	start, end, err := parseLineRange(assembleLines)
	if err != nil {
		return err
	}
	density, err := output.ParseDensity(outputDensity)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := resolveFormat(cmd, cfg)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	res, err := pipeline.New(cfg, logger).RunFile(commandContext(cmd), pipeline.Request{
		File:        args[0],
		StartLine:   start,
		EndLine:     end,
		Instruction: assembleInstruction,
		ProjectRoot: assembleProject,
	})
	if err != nil {
		return fmt.Errorf("assemble %s: %w", args[0], err)
	}

	return writeOutput(cmd.OutOrStdout(), format, output.NewResultOutput(res, density))
}
