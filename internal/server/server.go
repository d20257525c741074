// Package server bridges the tool registry onto the Model Context Protocol
// using the official MCP Go SDK (github.com/modelcontextprotocol/go-sdk).
//
// [Server] exposes every registered tool for discovery and invocation. Tool
// failures are returned as MCP tool results with IsError set rather than
// protocol errors, so clients always receive the error text. Each invocation
// gets a UUID for log correlation, a span, and metrics.
//
// Two transports are supported: [Server.Run] serves a single client over
// stdio, and [Server.HTTPHandler] returns a streamable-HTTP handler for
// serving multiple clients behind an HTTP listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MrWong99/ynab-mcp/internal/observe"
	"github.com/MrWong99/ynab-mcp/internal/overview"
	"github.com/MrWong99/ynab-mcp/internal/tools"
	"github.com/MrWong99/ynab-mcp/internal/ynab"
)

// Server is the MCP front end of the tool registry. Create instances with
// [New]; safe for concurrent use.
type Server struct {
	registry *tools.Registry
	metrics  *observe.Metrics
	impl     mcpsdk.Implementation

	mcp *mcpsdk.Server
}

// Option configures a [Server].
type Option func(*Server)

// WithMetrics sets the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithImplementation overrides the server name and version announced to
// clients during the MCP handshake.
func WithImplementation(name, version string) Option {
	return func(s *Server) {
		s.impl = mcpsdk.Implementation{Name: name, Version: version}
	}
}

// New creates a Server exposing every tool in registry.
func New(registry *tools.Registry, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		impl:     mcpsdk.Implementation{Name: "ynab-mcp", Version: "1.0.0"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}

	s.mcp = mcpsdk.NewServer(&s.impl, nil)
	for _, t := range registry.Descriptors() {
		s.mcp.AddTool(&mcpsdk.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, s.handler(t.Name))
	}
	return s
}

// handler adapts one registered tool to the SDK's raw tool handler.
func (s *Server) handler(name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		invocationID := uuid.NewString()
		start := time.Now()

		ctx, span := observe.StartSpan(ctx, "tool "+name)
		defer span.End()

		log := observe.Logger(ctx).With(
			slog.String("tool", name),
			slog.String("invocation_id", invocationID),
		)
		log.Debug("tool invocation started")

		blocks, err := s.registry.Invoke(ctx, name, rawArguments(req.Params.Arguments))
		duration := time.Since(start)
		s.metrics.RecordToolCall(ctx, name, statusOf(err), duration.Seconds())

		if err != nil {
			log.Warn("tool invocation failed",
				slog.String("status", statusOf(err)),
				slog.Duration("duration", duration),
				slog.String("err", err.Error()),
			)
			return &mcpsdk.CallToolResult{
				IsError: true,
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
			}, nil
		}

		log.Info("tool invocation completed",
			slog.Duration("duration", duration),
			slog.Int("blocks", len(blocks)),
		)

		content := make([]mcpsdk.Content, len(blocks))
		for i, b := range blocks {
			content[i] = &mcpsdk.TextContent{Text: b}
		}
		return &mcpsdk.CallToolResult{Content: content}, nil
	}
}

// rawArguments normalises the SDK's argument payload to a raw JSON object.
// Raw tool handlers receive json.RawMessage, but the field is typed any.
func rawArguments(args any) json.RawMessage {
	switch a := args.(type) {
	case nil:
		return nil
	case json.RawMessage:
		return a
	default:
		data, err := json.Marshal(a)
		if err != nil {
			return nil
		}
		return data
	}
}

// statusOf classifies an invocation outcome for metrics and logs. Wrapped
// errors are unwrapped so a decorated upstream failure still counts as one.
func statusOf(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		valErr     *tools.ValidationError
		argErr     *tools.InvalidArgumentsError
		unknownErr *tools.UnknownToolError
		apiErr     *ynab.APIError
		storeErr   *overview.StoreError
	)
	switch {
	case errors.As(err, &valErr), errors.As(err, &argErr):
		return "invalid_arguments"
	case errors.As(err, &unknownErr):
		return "unknown_tool"
	case errors.As(err, &apiErr):
		return "upstream_error"
	case errors.As(err, &storeErr):
		return "store_error"
	default:
		return "error"
	}
}

// Run serves a single MCP client over stdin/stdout until ctx is cancelled or
// the client disconnects. Nothing may write to stdout while it runs.
func (s *Server) Run(ctx context.Context) error {
	s.metrics.ActiveSessions.Add(ctx, 1)
	defer s.metrics.ActiveSessions.Add(ctx, -1)
	return s.mcp.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves one MCP client on the given transport. Used by tests and by
// transports other than stdio. The session gauge drops again once the peer
// disconnects.
func (s *Server) Connect(ctx context.Context, transport mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	ss, err := s.mcp.Connect(ctx, transport, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.ActiveSessions.Add(ctx, 1)
	go func() {
		_ = ss.Wait()
		s.metrics.ActiveSessions.Add(context.Background(), -1)
	}()
	return ss, nil
}

// HTTPHandler returns an [http.Handler] serving MCP over the streamable HTTP
// transport. Unlike [Server.Run] it supports multiple concurrent clients.
func (s *Server) HTTPHandler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.mcp
	}, nil)
}
