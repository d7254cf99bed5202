// Package mcpclient is a small MCP client used by the CLI to talk to a
// running github-mcp server, either over streamable HTTP or by spawning it
// on stdio.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client defines the MCP client capabilities the CLI needs.
type Client interface {
	ListTools(ctx context.Context) ([]ToolDescriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*Result, error)
	Close() error
}

// ToolDescriptor is a subset of MCP tool schema.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema []byte
}

// Result is a flattened tool call result. Text joins all text content blocks.
type Result struct {
	Text       string
	IsError    bool
	Structured map[string]any
}

type Option func(*config)

type config struct {
	name    string
	version string
}

// WithImplementation sets the client name and version sent on initialize.
func WithImplementation(name, version string) Option {
	return func(c *config) { c.name, c.version = name, version }
}

type sdkClient struct {
	cs *mcp.ClientSession
}

// Connect performs the MCP handshake over t.
func Connect(ctx context.Context, t mcp.Transport, opts ...Option) (Client, error) {
	cfg := config{name: "github-mcp-cli", version: "dev"}
	for _, o := range opts {
		o(&cfg)
	}
	c := mcp.NewClient(&mcp.Implementation{Name: cfg.name, Version: cfg.version}, nil)
	cs, err := c.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("mcp connect: %w", err)
	}
	return &sdkClient{cs: cs}, nil
}

// New connects to a streamable HTTP endpoint. addr is an http:// or https:// URL.
func New(ctx context.Context, addr string, opts ...Option) (Client, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("mcp endpoint %q: unsupported scheme %q", addr, u.Scheme)
	}
	return Connect(ctx, &mcp.StreamableClientTransport{Endpoint: u.String()}, opts...)
}

// Spawn starts command as a child process and speaks MCP over its stdio.
func Spawn(ctx context.Context, command string, args []string, opts ...Option) (Client, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("mcp spawn: command is empty")
	}
	cmd := exec.CommandContext(ctx, command, args...)
	return Connect(ctx, &mcp.CommandTransport{Command: cmd}, opts...)
}

func (c *sdkClient) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	var out []ToolDescriptor
	for tool, err := range c.cs.Tools(ctx, nil) {
		if err != nil {
			return nil, err
		}
		d := ToolDescriptor{Name: tool.Name, Description: tool.Description}
		if tool.InputSchema != nil {
			b, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, err
			}
			d.InputSchema = b
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *sdkClient) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	res, err := c.cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}
	var parts []string
	for _, content := range res.Content {
		if tc, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	out := &Result{Text: strings.Join(parts, "\n"), IsError: res.IsError}
	if m, ok := res.StructuredContent.(map[string]any); ok {
		out.Structured = m
	}
	return out, nil
}

func (c *sdkClient) Close() error { return c.cs.Close() }
