package tools

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wilhg/github-mcp/pkg/agent"
	"github.com/wilhg/github-mcp/pkg/repo"
)

// CreateRepositoryName is the tool name advertised to agents.
const CreateRepositoryName = "create-repository"

// CreateRepositoryArgs is the tool input. Optional fields fall back to an
// empty description and a public repository.
type CreateRepositoryArgs struct {
	Name        string `json:"name" jsonschema:"Repository name"`
	Description string `json:"description,omitempty" jsonschema:"Repository description"`
	Private     bool   `json:"private,omitempty" jsonschema:"Whether the repository should be private"`
}

// RepositoryCreator is satisfied by *repo.Handler.
type RepositoryCreator interface {
	Handle(ctx context.Context, req repo.CreationRequest) repo.Outcome
}

// CreateRepositoryTool exposes repository creation as an agent tool.
type CreateRepositoryTool struct{ Creator RepositoryCreator }

var createRepositoryOutput = []byte(`{"type":"object","properties":{` +
	`"text":{"type":"string"},` +
	`"ok":{"type":"boolean"},` +
	`"locator":{"type":"string"},` +
	`"error_kind":{"type":"string","enum":["configuration","validation","upstream","transport"]}` +
	`},"required":["text","ok"],"additionalProperties":false}`)

var createRepositoryInput = sync.OnceValue(func() []byte {
	s, err := jsonschema.For[CreateRepositoryArgs](nil)
	if err != nil {
		panic(err)
	}
	one := 1
	s.Properties["name"].MinLength = &one
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return b
})

func (CreateRepositoryTool) Describe() agent.ToolDescriptor {
	return agent.ToolDescriptor{
		Name:         CreateRepositoryName,
		Description:  "Create a new GitHub repository",
		InputSchema:  createRepositoryInput(),
		OutputSchema: createRepositoryOutput,
		Permissions: []agent.ToolPermission{
			{Name: "network:outbound", Description: "calls api.github.com"},
			{Name: "secret:github", Description: "uses the configured personal access token"},
		},
	}
}

// Invoke reports every failure in its output; the returned error is reserved
// for arguments that cannot be decoded at all.
func (t CreateRepositoryTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	var in CreateRepositoryArgs
	b, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	out := t.Creator.Handle(ctx, repo.CreationRequest{
		Name:        in.Name,
		Description: in.Description,
		Private:     in.Private,
	})
	res := map[string]any{"text": out.Text(), "ok": out.OK()}
	if out.OK() {
		res["locator"] = out.Locator()
	} else {
		res["error_kind"] = string(out.Kind())
	}
	return res, nil
}
