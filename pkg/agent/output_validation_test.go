package agent

import (
	"context"
	"testing"

	"github.com/wilhg/github-mcp/pkg/errmodel"
)

// badOutputTool declares an output schema that the Invoke implementation violates.
type badOutputTool struct{}

func (badOutputTool) Describe() ToolDescriptor {
	// Output requires {"ok": boolean}
	return ToolDescriptor{
		Name:         "bad_output_tool",
		Description:  "returns output that violates its OutputSchema",
		InputSchema:  []byte(`{"type":"object","properties":{},"additionalProperties":false}`),
		OutputSchema: []byte(`{"type":"object","properties":{"ok":{"type":"boolean"}},"required":["ok"],"additionalProperties":false}`),
		Permissions:  []ToolPermission{{Name: "cpu"}},
	}
}

func (badOutputTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	return map[string]any{"ok": "yes"}, nil
}

func TestSafeInvoke_InvalidOutput_YieldsValidationError(t *testing.T) {
	out, err := SafeInvoke(context.Background(), badOutputTool{}, map[string]any{}, Allow("cpu"), JSONSchemaValidator)
	if err == nil {
		t.Fatalf("expected error, got output=%v", out)
	}
	ce := errmodel.From(err)
	if ce.Category != errmodel.CategoryValidation || ce.Code != "invalid_output" {
		t.Fatalf("unexpected error category/code: %+v", ce)
	}
	if ce.Context == nil || ce.Context["tool"] != "bad_output_tool" {
		t.Fatalf("expected context to include tool name, got %+v", ce.Context)
	}
}
