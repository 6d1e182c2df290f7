package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func sampleTurn(n int) Turn {
	return Turn{
		TurnNumber: n,
		Timestamp:  time.Date(2026, 8, 30, 12, 0, n, 0, time.UTC),
		UserInput:  "compute 12 * (8 + 5)",
		Messages: []Message{
			{Role: RoleUser, Content: "compute 12 * (8 + 5)"},
			{Role: RoleAssistant, ToolCalls: []ToolCallRequest{{
				ID:        "call_1",
				Name:      "calculator",
				Arguments: map[string]any{"expression": "12 * (8 + 5)"},
			}}},
			{Role: RoleTool, Content: "156", ToolCallID: "call_1"},
			{Role: RoleAssistant, Content: "The result is 156"},
		},
		ToolCalls: []ToolCallPair{{
			Request: ToolCallRequest{
				ID:        "call_1",
				Name:      "calculator",
				Arguments: map[string]any{"expression": "12 * (8 + 5)"},
			},
			Result: ToolCallResult{ID: "call_1", OK: true, Output: "156"},
		}},
		FinalResponse: "The result is 156",
	}
}

func TestCreateLoadRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(conv.ID, "conv_") {
		t.Errorf("ID = %q, want conv_ prefix", conv.ID)
	}

	got, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != conv.ID {
		t.Errorf("ID = %q, want %q", got.ID, conv.ID)
	}
	if len(got.Turns) != 0 {
		t.Errorf("Turns = %d, want 0", len(got.Turns))
	}
}

func TestAppendRoundTripPreservesTurn(t *testing.T) {
	store := NewFileStore(t.TempDir())

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	turn := sampleTurn(1)
	if err := store.Append(conv.ID, turn); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Turns) != 1 {
		t.Fatalf("Turns = %d, want 1", len(got.Turns))
	}

	loaded := got.Turns[0]
	if !reflect.DeepEqual(loaded.Messages, turn.Messages) {
		t.Errorf("Messages differ after round trip:\n got %+v\nwant %+v", loaded.Messages, turn.Messages)
	}
	if !reflect.DeepEqual(loaded.ToolCalls, turn.ToolCalls) {
		t.Errorf("ToolCalls differ after round trip:\n got %+v\nwant %+v", loaded.ToolCalls, turn.ToolCalls)
	}
	if loaded.FinalResponse != turn.FinalResponse {
		t.Errorf("FinalResponse = %q, want %q", loaded.FinalResponse, turn.FinalResponse)
	}
	if loaded.ToolCalls[0].Request.ID != loaded.ToolCalls[0].Result.ID {
		t.Error("correlation ids no longer match after round trip")
	}
}

func TestTurnNumbersStayGapless(t *testing.T) {
	store := NewFileStore(t.TempDir())

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for n := 1; n <= 3; n++ {
		if err := store.Append(conv.ID, sampleTurn(n)); err != nil {
			t.Fatalf("Append turn %d: %v", n, err)
		}
	}

	// Skipping a number must be rejected.
	if err := store.Append(conv.ID, sampleTurn(5)); err == nil {
		t.Error("expected out-of-sequence turn to be rejected")
	}
	// Repeating a number must be rejected.
	if err := store.Append(conv.ID, sampleTurn(2)); err == nil {
		t.Error("expected repeated turn number to be rejected")
	}

	got, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i, turn := range got.Turns {
		if turn.TurnNumber != i+1 {
			t.Errorf("turn[%d].TurnNumber = %d, want %d", i, turn.TurnNumber, i+1)
		}
	}
}

func TestLoadNotFound(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Load("conv_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadCorruptJSON(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	path := filepath.Join(dir, conv.ID, "conversation.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	_, err = store.Load(conv.ID)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}

func TestLoadDetectsGappedNumbering(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Append(conv.ID, sampleTurn(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Rewrite the document with a gap, bypassing the store.
	path := filepath.Join(dir, conv.ID, "conversation.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	mangled := strings.Replace(string(data), `"turn_number": 1`, `"turn_number": 7`, 1)
	if err := os.WriteFile(path, []byte(mangled), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err = store.Load(conv.ID)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}

func TestListOrdersByUpdateTime(t *testing.T) {
	store := NewFileStore(t.TempDir())

	first, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Appending to the first conversation makes it the most recent.
	time.Sleep(10 * time.Millisecond)
	if err := store.Append(first.ID, sampleTurn(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List = %d entries, want 2", len(metas))
	}
	if metas[0].ID != first.ID {
		t.Errorf("metas[0].ID = %q, want %q (most recently updated)", metas[0].ID, first.ID)
	}
	if metas[0].TurnCount != 1 {
		t.Errorf("metas[0].TurnCount = %d, want 1", metas[0].TurnCount)
	}
	if metas[1].ID != second.ID {
		t.Errorf("metas[1].ID = %q, want %q", metas[1].ID, second.ID)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewFileStore(t.TempDir())

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(conv.ID); err != nil {
		t.Errorf("second Delete: %v, want nil", err)
	}
	if err := store.Delete("conv_never_existed"); err != nil {
		t.Errorf("Delete absent id: %v, want nil", err)
	}

	_, err = store.Load(conv.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete = %v, want ErrNotFound", err)
	}
}

func TestAppendToMissingConversation(t *testing.T) {
	store := NewFileStore(t.TempDir())

	err := store.Append("conv_missing", sampleTurn(1))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
