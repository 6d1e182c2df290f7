// Package agent drives the model-call / tool-call cycle for a conversation
// and commits completed turns to the ledger.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scribekit/scribe/internal/events"
	"github.com/scribekit/scribe/internal/ledger"
	"github.com/scribekit/scribe/internal/skills"
)

// Invoker executes tool-call requests against the skill registry. Every
// failure mode becomes a failure ToolCallResult: an unknown skill name, bad
// arguments, or a panicking skill must never abort the surrounding turn.
type Invoker struct {
	registry *skills.Registry
	bus      *events.Bus
}

// NewInvoker creates an invoker backed by the given registry. The bus is
// optional.
func NewInvoker(registry *skills.Registry, bus *events.Bus) *Invoker {
	return &Invoker{registry: registry, bus: bus}
}

// Invoke resolves, validates, and executes one tool-call request. The
// result carries the request's correlation id.
func (inv *Invoker) Invoke(ctx context.Context, req ledger.ToolCallRequest) ledger.ToolCallResult {
	inv.publishStarted(ctx, req)
	started := time.Now()
	result := inv.invoke(ctx, req)
	inv.publish(ctx, req, result, time.Since(started))
	return result
}

func (inv *Invoker) invoke(ctx context.Context, req ledger.ToolCallRequest) (result ledger.ToolCallResult) {
	result.ID = req.ID

	// A panicking skill is reported like any other skill fault.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("skill panicked", "skill", req.Name, "panic", r)
			result.OK = false
			result.Output = ""
			result.Error = fmt.Sprintf("skill %q panicked: %v", req.Name, r)
		}
	}()

	handler, err := inv.registry.Resolve(req.Name)
	if err != nil {
		if errors.Is(err, skills.ErrSkillNotFound) {
			result.Error = fmt.Sprintf("unknown skill %q", req.Name)
		} else {
			result.Error = err.Error()
		}
		return result
	}

	if desc := inv.registry.Descriptor(req.Name); desc != nil {
		if err := skills.ValidateArguments(desc, req.Arguments); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	args, err := marshalArguments(req.Arguments)
	if err != nil {
		result.Error = fmt.Sprintf("encode arguments: %v", err)
		return result
	}

	output, err := handler.Invoke(ctx, args)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.OK = true
	result.Output = output
	return result
}

func marshalArguments(args map[string]any) (string, error) {
	if args == nil {
		return "{}", nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (inv *Invoker) publishStarted(ctx context.Context, req ledger.ToolCallRequest) {
	if inv.bus == nil {
		return
	}

	inv.bus.Publish(events.NewTypedEventForConversation(
		events.SourceAgent,
		events.ToolCallPayload{
			Status:    events.ToolStatusStarted,
			Name:      req.Name,
			CallID:    req.ID,
			Arguments: req.Arguments,
		},
		events.ConversationIDFromContext(ctx),
	))
}

func (inv *Invoker) publish(ctx context.Context, req ledger.ToolCallRequest, res ledger.ToolCallResult, elapsed time.Duration) {
	if inv.bus == nil {
		return
	}

	payload := events.ToolCallPayload{
		Name:      req.Name,
		CallID:    req.ID,
		Arguments: req.Arguments,
		Duration:  elapsed,
	}
	if res.OK {
		payload.Status = events.ToolStatusCompleted
		payload.Result = res.Output
	} else {
		payload.Status = events.ToolStatusFailed
		payload.Error = res.Error
	}

	inv.bus.Publish(events.NewTypedEventForConversation(
		events.SourceAgent,
		payload,
		events.ConversationIDFromContext(ctx),
	))
}
