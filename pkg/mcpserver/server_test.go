package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wilhg/github-mcp/pkg/agent"
	"github.com/wilhg/github-mcp/pkg/agent/tools"
	"github.com/wilhg/github-mcp/pkg/config"
	"github.com/wilhg/github-mcp/pkg/ghapi"
	"github.com/wilhg/github-mcp/pkg/repo"
)

// github fakes POST /user/repos: 201 for new names, 422 for repeats.
type github struct {
	calls atomic.Int32
	seen  map[string]bool
}

func (g *github) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.calls.Add(1)
	var body struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")
	if g.seen[body.Name] {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"Repository creation failed.","errors":[{"resource":"Repository","code":"custom","field":"name","message":"name already exists on this account"}]}`)
		return
	}
	g.seen[body.Name] = true
	w.WriteHeader(http.StatusCreated)
	_, _ = io.WriteString(w, `{"full_name":"octo/`+body.Name+`","html_url":"https://github.example/octo/`+body.Name+`"}`)
}

func newServer(t *testing.T, token string) (*Server, *github) {
	t.Helper()
	gh := &github{seen: map[string]bool{}}
	ts := httptest.NewServer(gh)
	t.Cleanup(ts.Close)
	u, err := url.Parse(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	h := repo.NewHandler(config.GitHub{Token: token}, ghapi.New(ghapi.WithBaseURL(u)), nil)
	reg := agent.NewRegistry()
	if err := reg.Register(tools.CreateRepositoryTool{Creator: h}); err != nil {
		t.Fatal(err)
	}
	s, err := New(t.Context(), WithVersion("test"), WithInstructions("create repositories"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RegisterFromRegistry(reg, agent.Allow("network:outbound", "secret:github"), agent.JSONSchemaValidator); err != nil {
		t.Fatal(err)
	}
	return s, gh
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	ss, err := s.Connect(t.Context(), st)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ss.Close() })
	c := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0"}, nil)
	cs, err := c.Connect(t.Context(), ct, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callText(t *testing.T, cs *mcp.ClientSession, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(t.Context(), &mcp.CallToolParams{Name: tools.CreateRepositoryName, Arguments: args})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("content=%v", res.Content)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T", res.Content[0])
	}
	return tc.Text, res.IsError
}

func TestServer_AnnouncesCreateRepository(t *testing.T) {
	s, _ := newServer(t, "tok")
	cs := connect(t, s)
	if got := cs.InitializeResult().ServerInfo; got.Name != Name || got.Version != "test" {
		t.Fatalf("server info=%+v", got)
	}
	if got := cs.InitializeResult().Instructions; got != "create repositories" {
		t.Fatalf("instructions=%q", got)
	}
	res, err := cs.ListTools(t.Context(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tools) != 1 {
		t.Fatalf("tools=%d", len(res.Tools))
	}
	tool := res.Tools[0]
	if tool.Name != "create-repository" || tool.Description != "Create a new GitHub repository" {
		t.Fatalf("tool=%+v", tool)
	}
	b, _ := json.Marshal(tool.InputSchema)
	if !strings.Contains(string(b), `"required":["name"]`) {
		t.Fatalf("schema=%s", b)
	}
}

func TestServer_CreateThenConflict(t *testing.T) {
	s, gh := newServer(t, "tok")
	cs := connect(t, s)

	text, isErr := callText(t, cs, map[string]any{"name": "demo-repo"})
	if isErr || text != "Successfully created repository: https://github.example/octo/demo-repo" {
		t.Fatalf("first call: %q isError=%v", text, isErr)
	}
	text, isErr = callText(t, cs, map[string]any{"name": "demo-repo", "private": true})
	if !isErr || !strings.HasPrefix(text, "Failed to create repository: ") || !strings.Contains(text, "name already exists") {
		t.Fatalf("second call: %q isError=%v", text, isErr)
	}
	if gh.calls.Load() != 2 {
		t.Fatalf("upstream calls=%d", gh.calls.Load())
	}
}

func TestServer_MissingToken(t *testing.T) {
	s, gh := newServer(t, "")
	cs := connect(t, s)
	text, isErr := callText(t, cs, map[string]any{"name": "demo"})
	if !isErr || text != repo.MissingTokenMessage {
		t.Fatalf("text=%q isError=%v", text, isErr)
	}
	if gh.calls.Load() != 0 {
		t.Fatal("no request may be sent without a credential")
	}
}

func TestServer_InvalidArgumentsAreToolErrors(t *testing.T) {
	s, gh := newServer(t, "tok")
	cs := connect(t, s)
	text, isErr := callText(t, cs, map[string]any{"private": "yes"})
	if !isErr || !strings.HasPrefix(text, "tool input validation failed") {
		t.Fatalf("text=%q isError=%v", text, isErr)
	}
	if gh.calls.Load() != 0 {
		t.Fatal("invalid input reached upstream")
	}
}

func TestServer_MissingPermissionIsToolError(t *testing.T) {
	reg := agent.NewRegistry()
	if err := reg.Register(tools.CreateRepositoryTool{Creator: repo.NewHandler(config.GitHub{}, nil, nil)}); err != nil {
		t.Fatal(err)
	}
	s, _ := New(t.Context())
	if err := s.RegisterFromRegistry(reg, agent.Allow("network:outbound"), nil); err != nil {
		t.Fatal(err)
	}
	cs := connect(t, s)
	text, isErr := callText(t, cs, map[string]any{"name": "demo"})
	if !isErr || text != "permission denied for tool" {
		t.Fatalf("text=%q isError=%v", text, isErr)
	}
}

func TestServer_HTTPTransport(t *testing.T) {
	s, _ := newServer(t, "tok")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + HealthPath)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status=%d", resp.StatusCode)
	}

	c := mcp.NewClient(&mcp.Implementation{Name: "http-client", Version: "0"}, nil)
	cs, err := c.Connect(t.Context(), &mcp.StreamableClientTransport{Endpoint: ts.URL + MCPPath}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()
	text, isErr := callText(t, cs, map[string]any{"name": "over-http", "description": "d"})
	if isErr || !strings.HasSuffix(text, "/octo/over-http") {
		t.Fatalf("text=%q isError=%v", text, isErr)
	}
}

func TestServer_ServeRejectsUnknownTransport(t *testing.T) {
	s, _ := New(context.Background())
	if err := s.Serve(t.Context(), "carrier-pigeon", ""); err == nil {
		t.Fatal("expected error")
	}
}
