// Package mcpserver exposes registered agent tools over the Model Context
// Protocol, either on stdio or as a streamable HTTP endpoint.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/wilhg/github-mcp/pkg/agent"
	"github.com/wilhg/github-mcp/pkg/errmodel"
	"github.com/wilhg/github-mcp/pkg/logging"
)

const (
	// Name is the implementation name announced during initialization.
	Name = "github-mcp"

	TransportStdio = "stdio"
	TransportHTTP  = "http"

	// MCPPath serves the streamable HTTP transport.
	MCPPath = "/mcp"
	// HealthPath answers liveness probes.
	HealthPath = "/healthz"
)

// emptyObjectSchema stands in for tools without an input schema; MCP requires an object schema.
var emptyObjectSchema = json.RawMessage(`{"type":"object"}`)

type Server struct {
	srv *mcp.Server
	log *logrus.Logger
}

type options struct {
	version      string
	instructions string
	log          *logrus.Logger
}

type Option func(*options)

// WithVersion sets the implementation version announced to clients.
func WithVersion(v string) Option { return func(o *options) { o.version = v } }

// WithInstructions sets the server instructions sent on initialize.
func WithInstructions(s string) Option { return func(o *options) { o.instructions = s } }

// WithLogger routes server logs to l.
func WithLogger(l *logrus.Logger) Option { return func(o *options) { o.log = l } }

// New creates an MCP server with no tools registered.
func New(_ context.Context, opts ...Option) (*Server, error) {
	o := options{version: "1.0.0"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Discard()
	}
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: o.version}, &mcp.ServerOptions{Instructions: o.instructions})
	s := &Server{srv: srv, log: o.log}
	srv.AddReceivingMiddleware(s.logRequests)
	return s, nil
}

// RegisterFromRegistry exports every tool in reg. Calls go through
// agent.SafeInvoke with the given allowed permission set.
func (s *Server) RegisterFromRegistry(reg *agent.Registry, allowed map[string]bool, validate agent.ValidateFunc) error {
	if reg == nil {
		return errors.New("mcpserver: registry is nil")
	}
	var n int
	reg.Range(func(name string, t agent.Tool) {
		desc := t.Describe()
		schema := emptyObjectSchema
		if len(desc.InputSchema) > 0 {
			schema = json.RawMessage(desc.InputSchema)
		}
		s.srv.AddTool(&mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: schema,
		}, s.handler(t, allowed, validate))
		n++
	})
	s.log.WithField("tools", n).Debug("mcp tools registered")
	return nil
}

func (s *Server) handler(t agent.Tool, allowed map[string]bool, validate agent.ValidateFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.Params.Name
		var args map[string]any
		if raw := req.Params.Arguments; len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(errmodel.Validation("bad_arguments", "tool arguments must be a JSON object", map[string]any{"tool": name, "error": err.Error()})), nil
			}
		}
		out, err := agent.SafeInvoke(ctx, t, args, allowed, validate)
		if err != nil {
			entry := logging.WithTrace(ctx, s.log.WithField("tool", name)).WithError(err)
			if errmodel.IsCategory(err, errmodel.CategoryPolicy) {
				entry.Warn("tool call denied")
			} else {
				entry.Info("tool call rejected")
			}
			return errorResult(err), nil
		}
		return outputResult(out), nil
	}
}

// outputResult renders a tool output map as a single text block. A false
// "ok" marks the result as a tool-level error; the call itself still succeeds.
func outputResult(out map[string]any) *mcp.CallToolResult {
	text, ok := out["text"].(string)
	if !ok {
		b, _ := json.Marshal(out)
		text = string(b)
	}
	res := &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: out,
	}
	if v, ok := out["ok"].(bool); ok && !v {
		res.IsError = true
	}
	return res
}

func errorResult(err error) *mcp.CallToolResult {
	ce := errmodel.From(err)
	text := ce.Message
	if detail, ok := ce.Context["error"].(string); ok && detail != "" {
		text = fmt.Sprintf("%s: %s", text, detail)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func (s *Server) logRequests(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		start := time.Now()
		res, err := next(ctx, method, req)
		e := s.log.WithFields(logrus.Fields{"method": method, "duration_ms": time.Since(start).Milliseconds()})
		if err != nil {
			e.WithError(err).Warn("mcp request failed")
		} else {
			e.Debug("mcp request")
		}
		return res, err
	}
}

// Connect attaches the server to a single transport and returns the session.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.srv.Connect(ctx, t, nil)
}

// Handler returns the HTTP mux serving MCPPath and HealthPath.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(MCPPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.srv }, nil))
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// Serve runs the server on the named transport until ctx is cancelled or,
// for stdio, the client disconnects. addr is used only by the http transport.
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case TransportStdio, "":
		s.log.Info("GitHub MCP Server running on stdio")
		return s.srv.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.serveHTTP(ctx, addr)
	default:
		return errmodel.Config("bad_transport", "unknown transport", map[string]any{"transport": transport})
	}
}

func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("GitHub MCP Server listening on http")
		errCh <- hs.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
