package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

type UserMessagePayload struct {
	Content string `json:"content"`
}

func (UserMessagePayload) EventType() EventType { return EventUserMessage }

type AssistantMessagePayload struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

func (AssistantMessagePayload) EventType() EventType { return EventAssistantMessage }

// ToolStatus tracks a tool invocation through its lifecycle.
type ToolStatus string

const (
	ToolStatusStarted   ToolStatus = "started"
	ToolStatusCompleted ToolStatus = "completed"
	ToolStatusFailed    ToolStatus = "failed"
)

type ToolCallPayload struct {
	Status    ToolStatus     `json:"status"`
	Name      string         `json:"name"`
	CallID    string         `json:"call_id"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Duration  time.Duration  `json:"duration,omitempty"`
}

func (ToolCallPayload) EventType() EventType { return EventToolCall }

type ConversationCreatedPayload struct {
	ConversationID string `json:"conversation_id"`
}

func (ConversationCreatedPayload) EventType() EventType { return EventConversationCreated }

type ConversationDeletedPayload struct {
	ConversationID string `json:"conversation_id"`
}

func (ConversationDeletedPayload) EventType() EventType { return EventConversationDeleted }

type TurnCommittedPayload struct {
	ConversationID string `json:"conversation_id"`
	TurnNumber     int    `json:"turn_number"`
	ToolCalls      int    `json:"tool_calls"`
	FinalResponse  string `json:"final_response"`
}

func (TurnCommittedPayload) EventType() EventType { return EventTurnCommitted }

type SkillRegisteredPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (SkillRegisteredPayload) EventType() EventType { return EventSkillRegistered }

type SkillSkippedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (SkillSkippedPayload) EventType() EventType { return EventSkillSkipped }

// NewTypedEvent builds an Event from a typed payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return NewEvent(payload.EventType(), source, toPayloadMap(payload))
}

// NewTypedEventForConversation builds an Event carrying a conversation ID.
func NewTypedEventForConversation(source EventSource, payload EventPayload, conversationID string) Event {
	e := NewTypedEvent(source, payload)
	e.ConversationID = conversationID
	return e
}

// toPayloadMap round-trips a typed payload through JSON into a generic map.
func toPayloadMap(payload EventPayload) map[string]any {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// decodePayload re-hydrates a typed payload from an event's generic map.
func decodePayload[T EventPayload](e Event) (T, bool) {
	var out T
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false
	}
	return out, true
}

// GetUserMessagePayload extracts a UserMessagePayload from an event.
func GetUserMessagePayload(e Event) (UserMessagePayload, bool) {
	if e.Type != EventUserMessage {
		return UserMessagePayload{}, false
	}
	return decodePayload[UserMessagePayload](e)
}

// GetAssistantMessagePayload extracts an AssistantMessagePayload from an event.
func GetAssistantMessagePayload(e Event) (AssistantMessagePayload, bool) {
	if e.Type != EventAssistantMessage {
		return AssistantMessagePayload{}, false
	}
	return decodePayload[AssistantMessagePayload](e)
}

// GetToolCallPayload extracts a ToolCallPayload from an event.
func GetToolCallPayload(e Event) (ToolCallPayload, bool) {
	if e.Type != EventToolCall {
		return ToolCallPayload{}, false
	}
	return decodePayload[ToolCallPayload](e)
}

// GetTurnCommittedPayload extracts a TurnCommittedPayload from an event.
func GetTurnCommittedPayload(e Event) (TurnCommittedPayload, bool) {
	if e.Type != EventTurnCommitted {
		return TurnCommittedPayload{}, false
	}
	return decodePayload[TurnCommittedPayload](e)
}
