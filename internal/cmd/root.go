// Package cmd contains all CLI commands for ctxpack.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hargabyte/ctxpack/internal/config"
	"github.com/hargabyte/ctxpack/internal/logging"
	"github.com/hargabyte/ctxpack/internal/output"
)

var (
	// Version is the current version of ctxpack
	Version = "0.1.0"

	// Global flags
	verbose       bool
	configPath    string
	forAgents     bool
	outputFormat  string
	outputDensity string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ctxpack",
	Short: "Layered context packaging for LLM code prompts",
	Long: `ctxpack packages the code around a selection in a Java file into a
token-budgeted, layered context and renders it as an LLM prompt.

Context is built in five layers, highest priority first:
  SELECTED  the selected lines
  METHOD    the enclosing method
  CLASS     the enclosing class, with related methods ranked by relevance
  FILE      package, imports and related classes
  PROJECT   build system, dependencies and config files

When the budget runs out, lower layers are truncated first. The selection
itself is never truncated.

Output Format:
  --format    text (default) | yaml | json
  --density   sparse | medium (default) | dense, for yaml and json

Examples:
  ctxpack assemble src/main/java/com/shop/Cart.java --lines 12-18 --instruction "optimize this"
  ctxpack facts src/main/java/com/shop/Cart.java --lines 12-18 --format json
  ctxpack init
  ctxpack serve

See 'ctxpack <command> --help' for command-specific options.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .ctxpack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (text|yaml|json, default from config)")
	rootCmd.PersistentFlags().StringVar(&outputDensity, "density", string(output.DefaultDensity), "Output density for yaml/json (sparse|medium|dense)")
	rootCmd.Flags().BoolVar(&forAgents, "for-agents", false, "Output machine-readable capability discovery JSON")

	// Set custom help function to intercept --for-agents flag
	originalHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if forAgents {
			outputAgentHelp(cmd)
			return
		}
		originalHelp(cmd, args)
	})
}

// loadConfig reads the config named by --config, or searches upward from
// the working directory when the flag is unset.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		return config.LoadFromPath(configPath)
	}
	return config.Load(".")
}

// commandContext returns the command's context, or a background context
// when the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newLogger builds the logger for a command run.
func newLogger() (*zap.Logger, error) {
	return logging.New(verbose)
}

// resolveFormat returns the --format value, falling back to the config
// default when the flag was not given.
func resolveFormat(cmd *cobra.Command, cfg *config.Config) (output.Format, error) {
	if cmd.Flags().Changed("format") {
		return output.ParseFormat(outputFormat)
	}
	return output.ParseFormat(cfg.Output.DefaultFormat)
}

// writeOutput formats v and writes it to w.
func writeOutput(w io.Writer, format output.Format, v interface{}) error {
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.FormatToWriter(w, v)
}

// CommandInfo represents a command for agent discovery
type CommandInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Flags       []FlagInfo    `json:"flags,omitempty"`
	Subcommands []CommandInfo `json:"subcommands,omitempty"`
	Examples    []string      `json:"examples,omitempty"`
}

// FlagInfo represents a command flag for agent discovery
type FlagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp writes machine-readable JSON describing all commands
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())

	out := map[string]interface{}{
		"version":      Version,
		"commands":     root.Subcommands,
		"global_flags": root.Flags,
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(out)
}

// buildCommandInfo recursively builds command information for agent discovery
func buildCommandInfo(cmd *cobra.Command) CommandInfo {
	info := CommandInfo{
		Name:        cmd.Name(),
		Description: cmd.Short,
		Usage:       cmd.UseLine(),
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, FlagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}

	for _, line := range strings.Split(cmd.Example, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			info.Examples = append(info.Examples, trimmed)
		}
	}

	return info
}
