// Package ledger provides the durable, append-only store of conversation
// turns. A conversation is a header plus an ordered sequence of immutable
// turns; turn numbers are gapless and 1-based.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
)

var (
	// ErrNotFound is returned when a conversation ID has no persisted state.
	ErrNotFound = errors.New("conversation not found")
	// ErrCorrupt is returned when persisted data does not parse into valid turns.
	ErrCorrupt = errors.New("conversation data corrupt")
)

// Role identifies the author of a message in the model-facing dialogue.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in the model-facing dialogue. Content may be empty
// when the entry only carries tool-call requests. Messages are append-only
// and never mutated after append.
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`   // assistant messages requesting tools
	ToolCallID string            `json:"tool_call_id,omitempty"` // tool messages answering a request
}

// ToolCallRequest is the model's request to invoke a skill. ID is the opaque
// correlation token matching the eventual result back to this request.
type ToolCallRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolCallResult is the outcome of one skill invocation.
type ToolCallResult struct {
	ID     string `json:"id"`
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Text returns the representation re-injected into the message sequence and
// persisted. The same bytes serve both purposes.
func (r ToolCallResult) Text() string {
	if r.OK {
		return r.Output
	}
	return "error: " + r.Error
}

// ToolCallPair couples a request with its correlation-matched result.
type ToolCallPair struct {
	Request ToolCallRequest `json:"request"`
	Result  ToolCallResult  `json:"result"`
}

// Turn is one complete user-input-to-final-response cycle. A Turn is
// immutable once committed.
type Turn struct {
	TurnNumber    int            `json:"turn_number"`
	Timestamp     time.Time      `json:"timestamp"`
	UserInput     string         `json:"user_input"`
	Messages      []Message      `json:"messages"`
	ToolCalls     []ToolCallPair `json:"tool_calls"`
	FinalResponse string         `json:"final_response"`
}

// Conversation is the persisted unit: header plus ordered turns.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Turns     []Turn    `json:"turns"`
}

// Meta is the conversation header kept in a separate index file so that
// List never has to parse turn bodies.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TurnCount int       `json:"turn_count"`
}

// Store defines the persistence contract for conversations.
type Store interface {
	Create() (*Conversation, error)
	Load(id string) (*Conversation, error)
	Append(id string, turn Turn) error
	List() ([]Meta, error)
	Delete(id string) error
}

// Validate checks structural invariants of a turn before it is committed:
// a positive turn number and exactly one matched result per request issued
// earlier in the turn.
func (t Turn) Validate() error {
	if t.TurnNumber < 1 {
		return fmt.Errorf("turn number %d: must be >= 1", t.TurnNumber)
	}

	results := make(map[string]int, len(t.ToolCalls))
	for _, pair := range t.ToolCalls {
		if pair.Request.ID == "" {
			return fmt.Errorf("turn %d: tool call request for %q has no correlation id", t.TurnNumber, pair.Request.Name)
		}
		if pair.Request.ID != pair.Result.ID {
			return fmt.Errorf("turn %d: result id %q does not match request id %q", t.TurnNumber, pair.Result.ID, pair.Request.ID)
		}
		results[pair.Request.ID]++
	}
	for id, n := range results {
		if n > 1 {
			return fmt.Errorf("turn %d: correlation id %q used by %d requests", t.TurnNumber, id, n)
		}
	}
	return nil
}

// validateTurns checks the gapless 1..N numbering of a loaded conversation.
func validateTurns(turns []Turn) error {
	for i, turn := range turns {
		if turn.TurnNumber != i+1 {
			return fmt.Errorf("turn at index %d has number %d, want %d", i, turn.TurnNumber, i+1)
		}
	}
	return nil
}

// ToSchemaMessage converts a ledger Message to an Eino schema.Message.
func (m Message) ToSchemaMessage() (*schema.Message, error) {
	out := &schema.Message{
		Role:       schema.RoleType(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		args, err := marshalArguments(tc.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool call %q: %w", tc.Name, err)
		}
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID: tc.ID,
			Function: schema.FunctionCall{
				Name:      tc.Name,
				Arguments: args,
			},
		})
	}
	return out, nil
}

// NewMessageFromSchema converts an Eino schema.Message to a ledger Message.
func NewMessageFromSchema(msg *schema.Message) (Message, error) {
	out := Message{
		Role:       Role(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, tc := range msg.ToolCalls {
		args, err := unmarshalArguments(tc.Function.Arguments)
		if err != nil {
			return Message{}, fmt.Errorf("tool call %q: %w", tc.Function.Name, err)
		}
		out.ToolCalls = append(out.ToolCalls, ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}
