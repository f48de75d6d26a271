package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roach88/learnlog/internal/learning"
	"github.com/roach88/learnlog/internal/query"
	"github.com/roach88/learnlog/internal/store"
)

// ServerName is reported in the initialize handshake.
const ServerName = "learnlog"

// Defaults are the values tools use when an argument is omitted.
type Defaults struct {
	Staleness   time.Duration
	ReviewLimit int
	ExportDays  int
	MaxPerKind  int
}

// Server exposes the learning log and query engine as MCP tools.
type Server struct {
	log      *learning.Log
	engine   *query.Engine
	logger   *slog.Logger
	defaults Defaults
	version  string
	mcp      *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Logs must not go to stdout, which carries
// the protocol.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithDefaults sets argument defaults.
func WithDefaults(d Defaults) Option {
	return func(s *Server) { s.defaults = d }
}

// WithVersion sets the version reported by initialize.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a server over log and engine.
func NewServer(log *learning.Log, engine *query.Engine, opts ...Option) *Server {
	s := &Server{
		log:    log,
		engine: engine,
		logger: slog.Default(),
		defaults: Defaults{
			Staleness:   query.DefaultStaleness,
			ReviewLimit: query.DefaultLimit,
			ExportDays:  7,
		},
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcp = server.NewMCPServer(ServerName, s.version, server.WithToolCapabilities(false))
	s.registerTools()
	return s
}

// Serve speaks newline-delimited JSON-RPC on r and w until r reaches EOF
// or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	// Listen leaves a notification goroutine running until ctx is done.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn))
	return stdio.Listen(ctx, r, w)
}

// HandleMessage answers one JSON-RPC message. It returns nil for
// notifications.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcpgo.JSONRPCMessage {
	return s.mcp.HandleMessage(ctx, message)
}

// toolHandler adapts a tool implementation to mcp-go: arguments arrive as
// raw JSON, failures become isError results.
func (s *Server) toolHandler(name string, call func(context.Context, json.RawMessage) (string, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		args, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcpgo.NewToolResultError(errorText(&argumentError{msg: "invalid arguments", err: err})), nil
		}
		if string(args) == "null" {
			args = []byte("{}")
		}

		start := time.Now()
		text, err := call(ctx, args)
		if err != nil {
			s.logger.Warn("tool failed", "tool", name, "error", err)
			return mcpgo.NewToolResultError(errorText(err)), nil
		}
		s.logger.Debug("tool called", "tool", name, "elapsed", time.Since(start))
		return mcpgo.NewToolResultText(text), nil
	}
}

// errorText renders err as "Error [CODE]: message" when it carries a
// store code.
func errorText(err error) string {
	var argErr *argumentError
	switch {
	case errors.As(err, &argErr):
		return "Error [INVALID_ARGUMENT]: " + err.Error()
	case store.CodeOf(err) != "":
		return fmt.Sprintf("Error [%s]: %v", store.CodeOf(err), err)
	default:
		return "Error: " + err.Error()
	}
}
