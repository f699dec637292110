// Package mcp provides an MCP (Model Context Protocol) server for ctxpack.
// Agents call its tools to package the context around a selection instead
// of spawning the CLI for every request.
package mcp

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hargabyte/ctxpack/internal/config"
	"github.com/hargabyte/ctxpack/internal/output"
	"github.com/hargabyte/ctxpack/internal/pipeline"
)

// Tool names.
const (
	ToolAssemble = "ctx_assemble"
	ToolFacts    = "ctx_facts"
)

// AllTools lists all available tools
var AllTools = []string{ToolAssemble, ToolFacts}

// exit is replaced in tests.
var exit = os.Exit

// Server wraps the MCP server with the ctxpack pipeline. Each tool call
// runs its own request, so calls may be served concurrently.
type Server struct {
	mcpServer    *server.MCPServer
	pipeline     *pipeline.Pipeline
	logger       *zap.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Options holds server options
type Options struct {
	Version string
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// New creates a new MCP server. A nil cfg uses the defaults and a nil
// logger disables logging.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		mcpServer:    server.NewMCPServer("ctxpack", opts.Version, server.WithToolCapabilities(false)),
		pipeline:     pipeline.New(cfg, logger),
		logger:       logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      opts.Timeout,
	}

	toolsToRegister := opts.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}
	for _, name := range toolsToRegister {
		if err := s.registerTool(name); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", name, err)
		}
		s.tools[name] = true
	}

	return s, nil
}

func (s *Server) registerTool(name string) error {
	switch name {
	case ToolAssemble:
		s.mcpServer.AddTool(newAssembleTool(), s.handleAssemble)
	case ToolFacts:
		s.mcpServer.AddTool(newFactsTool(), s.handleFacts)
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
	return nil
}

func newAssembleTool() mcp.Tool {
	return mcp.NewTool(ToolAssemble,
		mcp.WithDescription(toolSchemaRegistry[ToolAssemble].Description),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the Java source file"),
		),
		mcp.WithNumber("start_line",
			mcp.Required(),
			mcp.Description("First selected line, 1-based"),
		),
		mcp.WithNumber("end_line",
			mcp.Required(),
			mcp.Description("Last selected line, inclusive"),
		),
		mcp.WithString("instruction",
			mcp.Description("Instruction for the model, e.g. \"optimize this\""),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory (default: nearest build file)"),
		),
		mcp.WithString("density",
			mcp.Description("Detail level: sparse, medium, dense (default: medium)"),
		),
	)
}

func newFactsTool() mcp.Tool {
	return mcp.NewTool(ToolFacts,
		mcp.WithDescription(toolSchemaRegistry[ToolFacts].Description),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the Java source file"),
		),
		mcp.WithNumber("start_line",
			mcp.Required(),
			mcp.Description("First selected line, 1-based"),
		),
		mcp.WithNumber("end_line",
			mcp.Required(),
			mcp.Description("Last selected line, inclusive"),
		),
		mcp.WithString("project_root",
			mcp.Description("Project root directory (default: nearest build file)"),
		),
	)
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go s.timeoutChecker(ctx)
	}
	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker stops the process after the inactivity timeout.
func (s *Server) timeoutChecker(ctx context.Context) {
	ticker := time.NewTicker(min(30*time.Second, s.timeout))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.idle() > s.timeout {
			s.logger.Info("stopping after inactivity", zap.Duration("timeout", s.timeout))
			exit(0)
		}
	}
}

func (s *Server) idle() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActivity)
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tool names, sorted.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry mirrors the mcp.NewTool definitions for listing
// without a client.
var toolSchemaRegistry = map[string]ToolSchema{
	ToolAssemble: {
		Name:        ToolAssemble,
		Description: "Package the code around a selection in a Java file into a token-budgeted layered context and render the LLM prompt. Returns JSON with per-layer estimates, related methods, the prompt and its token usage.",
		Parameters: []ParameterSchema{
			{Name: "file", Type: "string", Description: "Path of the Java source file", Required: true},
			{Name: "start_line", Type: "number", Description: "First selected line, 1-based", Required: true},
			{Name: "end_line", Type: "number", Description: "Last selected line, inclusive", Required: true},
			{Name: "instruction", Type: "string", Description: "Instruction for the model"},
			{Name: "project_root", Type: "string", Description: "Project root directory (default: nearest build file)"},
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: medium)"},
		},
	},
	ToolFacts: {
		Name:        ToolFacts,
		Description: "Extract the facts around a selection in a Java file: enclosing method, class, file and project, plus the selection's identifiers, calls, code pattern and semantic features.",
		Parameters: []ParameterSchema{
			{Name: "file", Type: "string", Description: "Path of the Java source file", Required: true},
			{Name: "start_line", Type: "number", Description: "First selected line, 1-based", Required: true},
			{Name: "end_line", Type: "number", Description: "Last selected line, inclusive", Required: true},
			{Name: "project_root", Type: "string", Description: "Project root directory (default: nearest build file)"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	names := s.ListTools()
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()
	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	req, err := requestFromArgs(args)
	if err != nil {
		return "", err
	}

	switch name {
	case ToolAssemble:
		density := output.DefaultDensity
		if d, _ := args["density"].(string); d != "" {
			if density, err = output.ParseDensity(d); err != nil {
				return "", err
			}
		}
		return s.executeAssemble(ctx, req, density)
	case ToolFacts:
		return s.executeFacts(ctx, req)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// Tool handlers

func (s *Server) handleAssemble(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handle(ctx, ToolAssemble, req)
}

func (s *Server) handleFacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handle(ctx, ToolFacts, req)
}

// handle reports tool failures as error results so the agent sees them.
func (s *Server) handle(ctx context.Context, name string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	started := time.Now()
	log := s.logger.With(zap.String("tool", name), zap.String("request_id", uuid.NewString()))
	log.Debug("tool call")

	result, err := s.CallTool(ctx, name, req.GetArguments())
	if err != nil {
		log.Debug("tool call failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	log.Debug("tool call done", zap.Duration("elapsed", time.Since(started)), zap.Int("bytes", len(result)))
	return mcp.NewToolResultText(result), nil
}

// Tool implementations

func (s *Server) executeAssemble(ctx context.Context, req pipeline.Request, density output.Density) (string, error) {
	res, err := s.pipeline.RunFile(ctx, req)
	if err != nil {
		return "", err
	}
	return toJSON(output.NewResultOutput(res, density))
}

func (s *Server) executeFacts(ctx context.Context, req pipeline.Request) (string, error) {
	sel, err := s.pipeline.Facts(ctx, req)
	if err != nil {
		return "", err
	}
	return toJSON(sel)
}

// requestFromArgs reads the selection arguments. JSON numbers arrive as
// float64.
func requestFromArgs(args map[string]interface{}) (pipeline.Request, error) {
	var req pipeline.Request

	file, _ := args["file"].(string)
	if file == "" {
		return req, fmt.Errorf("file parameter is required")
	}
	start, ok := args["start_line"].(float64)
	if !ok {
		return req, fmt.Errorf("start_line parameter is required")
	}
	end, ok := args["end_line"].(float64)
	if !ok {
		return req, fmt.Errorf("end_line parameter is required")
	}
	if start != float64(int(start)) || end != float64(int(end)) {
		return req, fmt.Errorf("start_line and end_line must be whole numbers")
	}

	req.File = file
	req.StartLine = int(start)
	req.EndLine = int(end)
	req.Instruction, _ = args["instruction"].(string)
	req.ProjectRoot, _ = args["project_root"].(string)
	return req, nil
}

func toJSON(v interface{}) (string, error) {
	return output.NewJSONFormatter().Format(v)
}
