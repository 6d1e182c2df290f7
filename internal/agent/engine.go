package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/scribekit/scribe/internal/events"
	"github.com/scribekit/scribe/internal/ledger"
)

// Engine is the caller-facing surface for conversations. It owns the
// per-conversation serialization required to keep turn numbers gapless:
// two concurrent submits against one conversation run one after the other,
// while independent conversations proceed in parallel.
type Engine struct {
	store ledger.Store
	loop  *Loop
	bus   *events.Bus

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an engine over the given store and loop. The bus is
// optional.
func NewEngine(store ledger.Store, loop *Loop, bus *events.Bus) *Engine {
	return &Engine{
		store: store,
		loop:  loop,
		bus:   bus,
		locks: make(map[string]*sync.Mutex),
	}
}

// StartConversation allocates a new conversation and persists its header.
func (e *Engine) StartConversation() (string, error) {
	conv, err := e.store.Create()
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}

	e.publish(events.NewTypedEventForConversation(
		events.SourceAgent,
		events.ConversationCreatedPayload{ConversationID: conv.ID},
		conv.ID,
	))

	return conv.ID, nil
}

// Submit runs one full turn against the conversation and commits it. On any
// error the conversation is left exactly as it was before the call: the
// user input is not considered consumed and no partial turn is visible.
func (e *Engine) Submit(ctx context.Context, id, userInput string) (*ledger.Turn, error) {
	lock := e.conversationLock(id)
	lock.Lock()
	defer lock.Unlock()

	conv, err := e.store.Load(id)
	if err != nil {
		return nil, err
	}

	ctx = events.ContextWithConversationID(ctx, id)

	e.publish(events.NewTypedEventForConversation(
		events.SourceAgent,
		events.UserMessagePayload{Content: userInput},
		id,
	))

	history, err := replayMessages(conv.Turns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrCorrupt, err)
	}

	turn, err := e.loop.RunTurn(ctx, len(conv.Turns)+1, history, userInput)
	if err != nil {
		return nil, err
	}

	if err := e.store.Append(id, *turn); err != nil {
		// Nothing to roll back: RunTurn touched no shared state and the
		// store promises a failed append leaves prior turns intact.
		return nil, fmt.Errorf("commit turn %d: %w", turn.TurnNumber, err)
	}

	e.publish(events.NewTypedEventForConversation(
		events.SourceAgent,
		events.AssistantMessagePayload{Content: turn.FinalResponse},
		id,
	))
	e.publish(events.NewTypedEventForConversation(
		events.SourceAgent,
		events.TurnCommittedPayload{
			ConversationID: id,
			TurnNumber:     turn.TurnNumber,
			ToolCalls:      len(turn.ToolCalls),
			FinalResponse:  turn.FinalResponse,
		},
		id,
	))

	return turn, nil
}

// History returns the committed turns of a conversation in order.
func (e *Engine) History(id string) ([]ledger.Turn, error) {
	conv, err := e.store.Load(id)
	if err != nil {
		return nil, err
	}
	return conv.Turns, nil
}

// ListConversations enumerates conversation headers, most recent first.
func (e *Engine) ListConversations() ([]ledger.Meta, error) {
	return e.store.List()
}

// DeleteConversation removes all persisted state for a conversation.
// Deleting an unknown id is not an error.
func (e *Engine) DeleteConversation(id string) error {
	lock := e.conversationLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := e.store.Delete(id); err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.locks, id)
	e.mu.Unlock()

	e.publish(events.NewTypedEventForConversation(
		events.SourceAgent,
		events.ConversationDeletedPayload{ConversationID: id},
		id,
	))

	return nil
}

func (e *Engine) conversationLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

func (e *Engine) publish(event events.Event) {
	if e.bus != nil {
		e.bus.Publish(event)
	}
}

// replayMessages flattens the committed turns into the model-facing
// sequence re-sent on every new turn.
func replayMessages(turns []ledger.Turn) ([]*schema.Message, error) {
	var out []*schema.Message
	for _, turn := range turns {
		for _, m := range turn.Messages {
			sm, err := m.ToSchemaMessage()
			if err != nil {
				return nil, fmt.Errorf("turn %d: %w", turn.TurnNumber, err)
			}
			out = append(out, sm)
		}
	}
	return out, nil
}
