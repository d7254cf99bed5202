package agent

import (
	"context"
	"testing"

	"github.com/wilhg/github-mcp/pkg/errmodel"
)

type slugTool struct{}

func (slugTool) Describe() ToolDescriptor {
	return ToolDescriptor{
		Name:         "slug",
		InputSchema:  []byte(`{"type":"object","properties":{"name":{"type":"string","minLength":1}},"required":["name"],"additionalProperties":false}`),
		OutputSchema: []byte(`{"type":"object","properties":{"slug":{"type":"string"}},"required":["slug"],"additionalProperties":false}`),
		Permissions:  []ToolPermission{{Name: "cpu"}},
	}
}

func (slugTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	n, _ := args["name"].(string)
	return map[string]any{"slug": "repo-" + n}, nil
}

func TestRegistryAndSafeInvoke(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(slugTool{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(slugTool{}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	tl, ok := r.Resolve("slug")
	if !ok || tl == nil {
		t.Fatal("tool not resolved")
	}
	// missing permission
	_, err := SafeInvoke(context.Background(), tl, map[string]any{"name": "demo"}, map[string]bool{}, JSONSchemaValidator)
	if !errmodel.IsCategory(err, errmodel.CategoryPolicy) {
		t.Fatalf("expected permission error, got %v", err)
	}
	// ok
	out, err := SafeInvoke(context.Background(), tl, map[string]any{"name": "demo"}, Allow("cpu"), JSONSchemaValidator)
	if err != nil {
		t.Fatal(err)
	}
	if out["slug"] != "repo-demo" {
		t.Fatalf("out=%v", out)
	}
	// bad input
	_, err = SafeInvoke(context.Background(), tl, map[string]any{"name": 7}, Allow("cpu"), JSONSchemaValidator)
	if ce := errmodel.From(err); ce == nil || ce.Code != "invalid_input" {
		t.Fatalf("expected validation error, got %v", err)
	}
	// nil args are treated as an empty object and fail the required check
	if _, err := SafeInvoke(context.Background(), tl, nil, Allow("cpu"), nil); err == nil {
		t.Fatal("expected missing name error")
	}
}

type brokenSchemaTool struct{ slugTool }

func (brokenSchemaTool) Describe() ToolDescriptor {
	d := slugTool{}.Describe()
	d.Name = "broken"
	d.InputSchema = []byte(`{"type":"object","properties":{"name":{"type":"strung"}}}`)
	return d
}

func TestRegister_RejectsInvalidSchema(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(brokenSchemaTool{}); err == nil {
		t.Fatal("expected schema compile error")
	}
	if err := r.Register(nil); err == nil {
		t.Fatal("expected nil tool error")
	}
}

func TestRange_SortedByName(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(namedTool(n)); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	r.Range(func(name string, _ Tool) { got = append(got, name) })
	if len(got) != 3 || got[0] != "alpha" || got[1] != "mid" || got[2] != "zeta" {
		t.Fatalf("order=%v", got)
	}
}

type namedTool string

func (n namedTool) Describe() ToolDescriptor {
	return ToolDescriptor{Name: string(n), InputSchema: []byte(`{"type":"object"}`)}
}

func (namedTool) Invoke(context.Context, map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}
