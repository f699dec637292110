package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hargabyte/ctxpack/internal/mcp"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout so AI agents
can package context through tool calls instead of spawning the CLI.

Logs go to stderr; stdout carries the protocol.

Available Tools:
  ctx_assemble  Layered context and prompt for a selection (JSON)
  ctx_facts     Extracted facts for a selection (JSON)`,
	Example: `  ctxpack serve
  ctxpack serve --tools assemble
  ctxpack serve --timeout 30m
  ctxpack serve --list-tools`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveTools     string
	serveTimeout   time.Duration
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: all)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	tools := parseToolList(serveTools)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	server, err := mcp.New(cfg, logger, mcp.Options{
		Version: Version,
		Tools:   tools,
		Timeout: serveTimeout,
	})
	if err != nil {
		return err
	}

	if serveListTools {
		for _, schema := range server.GetToolSchemas() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %s\n", schema.Name, schema.Description)
		}
		return nil
	}

	logger.Info("starting MCP server",
		zap.Strings("tools", server.ListTools()),
		zap.Duration("timeout", serveTimeout))
	return server.ServeStdio()
}

// parseToolList splits --tools, allowing the shorthand "assemble" for
// "ctx_assemble".
func parseToolList(s string) []string {
	var tools []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !strings.HasPrefix(t, "ctx_") {
			t = "ctx_" + t
		}
		tools = append(tools, t)
	}
	return tools
}
