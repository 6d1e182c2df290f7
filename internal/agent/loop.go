package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/scribekit/scribe/internal/ledger"
	"github.com/scribekit/scribe/internal/skills"
)

// State is the agent loop's position within one turn.
type State string

const (
	StateAwaitingModel       State = "awaiting_model"
	StateModelAnswered       State = "model_answered"
	StateModelRequestedTools State = "model_requested_tools"
	StateExecutingTools      State = "executing_tools"
	StateFinalized           State = "finalized"
)

// DefaultMaxIterations bounds the model-to-tool round trips within one turn.
const DefaultMaxIterations = 8

// capReachedResponse is the synthesized final response committed when a
// turn hits the iteration cap. The turn is committed regardless so a
// runaway loop never leaves the conversation un-persisted.
const capReachedResponse = "I stopped after reaching the tool call limit for this turn. The tool calls made so far are recorded above; please rephrase or narrow the request to continue."

// Loop runs the bounded model-call / tool-call state machine for one
// conversation turn at a time. It owns no conversation state between calls:
// the caller supplies prior messages and receives a completed Turn.
type Loop struct {
	chatModel     model.ToolCallingChatModel
	invoker       *Invoker
	registry      *skills.Registry
	systemPrompt  string
	maxIterations int
}

// LoopConfig holds the dependencies for a Loop.
type LoopConfig struct {
	ChatModel     model.ToolCallingChatModel
	Invoker       *Invoker
	Registry      *skills.Registry
	SystemPrompt  string
	MaxIterations int // 0 means DefaultMaxIterations
}

// NewLoop creates an agent loop.
func NewLoop(cfg LoopConfig) *Loop {
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		chatModel:     cfg.ChatModel,
		invoker:       cfg.Invoker,
		registry:      cfg.Registry,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: maxIterations,
	}
}

// RunTurn executes one full user-input-to-final-response cycle. history is
// the model-facing message replay of all previously committed turns. The
// returned Turn carries the given turn number; committing it is the
// caller's responsibility.
//
// Model faults propagate as errors with no partial Turn. Skill faults never
// do: they come back as failure results inside the Turn.
func (l *Loop) RunTurn(ctx context.Context, turnNumber int, history []*schema.Message, userInput string) (*ledger.Turn, error) {
	turn := &ledger.Turn{
		TurnNumber: turnNumber,
		Timestamp:  time.Now().UTC(),
		UserInput:  userInput,
		ToolCalls:  []ledger.ToolCallPair{},
	}

	userMsg := ledger.Message{Role: ledger.RoleUser, Content: userInput}
	turn.Messages = append(turn.Messages, userMsg)

	chatModel := l.chatModel
	toolInfos := l.toolInfos()
	if len(toolInfos) > 0 {
		withTools, err := l.chatModel.WithTools(toolInfos)
		if err != nil {
			return nil, fmt.Errorf("bind tools: %w", err)
		}
		chatModel = withTools
	}

	messages := l.assemble(history, turn.Messages)
	seenCallIDs := make(map[string]bool)
	state := StateAwaitingModel
	transition := func(next State) {
		slog.Debug("agent loop transition", "turn", turnNumber, "from", state, "to", next)
		state = next
	}

	for iteration := 0; ; iteration++ {
		if iteration >= l.maxIterations {
			slog.Warn("iteration cap reached, synthesizing final response",
				"turn", turnNumber, "cap", l.maxIterations)
			turn.FinalResponse = capReachedResponse
			turn.Messages = append(turn.Messages, ledger.Message{
				Role:    ledger.RoleAssistant,
				Content: capReachedResponse,
			})
			transition(StateFinalized)
			break
		}

		transition(StateAwaitingModel)
		resp, err := chatModel.Generate(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}

		// Providers can omit correlation ids, and a looping model can
		// replay one from an earlier round trip. Every request gets an
		// id unique within the turn before its result is matched back,
		// rewritten on the response so the model-facing and persisted
		// views agree.
		for i := range resp.ToolCalls {
			if id := resp.ToolCalls[i].ID; id == "" || seenCallIDs[id] {
				resp.ToolCalls[i].ID = uuid.New().String()
			}
			seenCallIDs[resp.ToolCalls[i].ID] = true
		}

		assistantMsg, err := ledger.NewMessageFromSchema(resp)
		if err != nil {
			return nil, fmt.Errorf("decode model response: %w", err)
		}
		turn.Messages = append(turn.Messages, assistantMsg)
		messages = append(messages, resp)

		if len(assistantMsg.ToolCalls) == 0 {
			transition(StateModelAnswered)
			turn.FinalResponse = assistantMsg.Content
			transition(StateFinalized)
			break
		}

		transition(StateModelRequestedTools)

		// Execute sequentially in request order.
		transition(StateExecutingTools)
		for _, req := range assistantMsg.ToolCalls {
			result := l.invoker.Invoke(ctx, req)
			turn.ToolCalls = append(turn.ToolCalls, ledger.ToolCallPair{
				Request: req,
				Result:  result,
			})

			toolMsg := ledger.Message{
				Role:       ledger.RoleTool,
				Content:    result.Text(),
				ToolCallID: req.ID,
			}
			turn.Messages = append(turn.Messages, toolMsg)

			sm, err := toolMsg.ToSchemaMessage()
			if err != nil {
				return nil, fmt.Errorf("encode tool result: %w", err)
			}
			messages = append(messages, sm)
		}
	}

	if state != StateFinalized {
		return nil, fmt.Errorf("turn %d ended in state %s", turnNumber, state)
	}

	if err := turn.Validate(); err != nil {
		return nil, fmt.Errorf("assembled turn invalid: %w", err)
	}

	return turn, nil
}

// toolInfos converts the registry's descriptors, in registration order, to
// the schema advertised alongside every model call.
func (l *Loop) toolInfos() []*schema.ToolInfo {
	if l.registry == nil {
		return nil
	}
	descriptors := l.registry.List()
	if len(descriptors) == 0 {
		return nil
	}
	infos := make([]*schema.ToolInfo, len(descriptors))
	for i, d := range descriptors {
		infos[i] = d.ToolInfo()
	}
	return infos
}

// assemble builds the full model-facing sequence: optional system prompt,
// prior-turn replay, then the current turn's messages so far.
func (l *Loop) assemble(history []*schema.Message, current []ledger.Message) []*schema.Message {
	out := make([]*schema.Message, 0, 1+len(history)+len(current))
	if l.systemPrompt != "" {
		out = append(out, schema.SystemMessage(l.systemPrompt))
	}
	out = append(out, history...)
	for _, m := range current {
		sm, err := m.ToSchemaMessage()
		if err != nil {
			// Current-turn messages were just built from valid values.
			continue
		}
		out = append(out, sm)
	}
	return out
}
