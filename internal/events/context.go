package events

import "context"

type conversationIDKey struct{}

// ContextWithConversationID returns a new context carrying the conversation ID.
func ContextWithConversationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversationIDKey{}, id)
}

// ConversationIDFromContext extracts the conversation ID, or "" if absent.
func ConversationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(conversationIDKey{}).(string); ok {
		return id
	}
	return ""
}
