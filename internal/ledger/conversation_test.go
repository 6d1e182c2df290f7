package ledger

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestMessageSchemaRoundTrip(t *testing.T) {
	original := Message{
		Role:    RoleAssistant,
		Content: "let me check that",
		ToolCalls: []ToolCallRequest{
			{
				ID:        "call_1",
				Name:      "calculator",
				Arguments: map[string]any{"expression": "12 * (8 + 5)"},
			},
		},
	}

	sm, err := original.ToSchemaMessage()
	if err != nil {
		t.Fatalf("ToSchemaMessage: %v", err)
	}
	if sm.Role != schema.Assistant {
		t.Errorf("role = %q, want assistant", sm.Role)
	}
	if len(sm.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(sm.ToolCalls))
	}
	if !strings.Contains(sm.ToolCalls[0].Function.Arguments, "12 * (8 + 5)") {
		t.Errorf("arguments not serialized: %q", sm.ToolCalls[0].Function.Arguments)
	}

	back, err := NewMessageFromSchema(sm)
	if err != nil {
		t.Fatalf("NewMessageFromSchema: %v", err)
	}
	if back.Role != original.Role || back.Content != original.Content {
		t.Errorf("round trip changed message: %+v", back)
	}
	if len(back.ToolCalls) != 1 || back.ToolCalls[0].ID != "call_1" {
		t.Fatalf("round trip lost tool calls: %+v", back.ToolCalls)
	}
	if got := back.ToolCalls[0].Arguments["expression"]; got != "12 * (8 + 5)" {
		t.Errorf("arguments = %v, want expression preserved", got)
	}
}

func TestToSchemaMessageNilArguments(t *testing.T) {
	m := Message{
		Role:      RoleAssistant,
		ToolCalls: []ToolCallRequest{{ID: "call_1", Name: "web_search"}},
	}
	sm, err := m.ToSchemaMessage()
	if err != nil {
		t.Fatalf("ToSchemaMessage: %v", err)
	}
	if sm.ToolCalls[0].Function.Arguments != "{}" {
		t.Errorf("nil arguments serialized as %q, want {}", sm.ToolCalls[0].Function.Arguments)
	}
}

func TestNewMessageFromSchemaToolResult(t *testing.T) {
	sm := &schema.Message{
		Role:       schema.Tool,
		Content:    "156",
		ToolCallID: "call_1",
	}
	m, err := NewMessageFromSchema(sm)
	if err != nil {
		t.Fatalf("NewMessageFromSchema: %v", err)
	}
	if m.Role != RoleTool || m.ToolCallID != "call_1" || m.Content != "156" {
		t.Errorf("unexpected message: %+v", m)
	}
}

func TestToolCallResultText(t *testing.T) {
	ok := ToolCallResult{ID: "call_1", OK: true, Output: "156"}
	if got := ok.Text(); got != "156" {
		t.Errorf("ok result text = %q", got)
	}

	failed := ToolCallResult{ID: "call_2", OK: false, Error: "unknown skill \"nope\""}
	if got := failed.Text(); got != "error: unknown skill \"nope\"" {
		t.Errorf("failed result text = %q", got)
	}
}

func TestTurnValidate(t *testing.T) {
	tests := []struct {
		name    string
		turn    Turn
		wantErr string
	}{
		{
			name: "valid",
			turn: Turn{
				TurnNumber: 1,
				ToolCalls: []ToolCallPair{
					{Request: ToolCallRequest{ID: "a", Name: "calculator"}, Result: ToolCallResult{ID: "a", OK: true}},
					{Request: ToolCallRequest{ID: "b", Name: "calculator"}, Result: ToolCallResult{ID: "b", OK: false, Error: "boom"}},
				},
			},
		},
		{
			name:    "zero turn number",
			turn:    Turn{TurnNumber: 0},
			wantErr: "must be >= 1",
		},
		{
			name: "missing correlation id",
			turn: Turn{
				TurnNumber: 1,
				ToolCalls: []ToolCallPair{
					{Request: ToolCallRequest{Name: "calculator"}, Result: ToolCallResult{OK: true}},
				},
			},
			wantErr: "no correlation id",
		},
		{
			name: "mismatched result id",
			turn: Turn{
				TurnNumber: 1,
				ToolCalls: []ToolCallPair{
					{Request: ToolCallRequest{ID: "a", Name: "calculator"}, Result: ToolCallResult{ID: "b", OK: true}},
				},
			},
			wantErr: "does not match",
		},
		{
			name: "duplicate correlation id",
			turn: Turn{
				TurnNumber: 1,
				ToolCalls: []ToolCallPair{
					{Request: ToolCallRequest{ID: "a", Name: "calculator"}, Result: ToolCallResult{ID: "a", OK: true}},
					{Request: ToolCallRequest{ID: "a", Name: "calculator"}, Result: ToolCallResult{ID: "a", OK: true}},
				},
			},
			wantErr: "used by 2 requests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.turn.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
