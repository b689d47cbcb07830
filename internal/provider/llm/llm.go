// Package llm abstracts the chat completion backends. Exactly one client is
// constructed at startup from configuration; unknown provider names are a
// fatal configuration error, never a runtime fallback.
package llm

import "context"

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a chat completion backend.
type Client interface {
	// Name identifies the backend, e.g. "openai".
	Name() string
	// Chat sends the full conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []Message) (string, error)
	// StreamChat sends the conversation and delivers the reply incrementally
	// through onChunk. Implementations that cannot stream deliver the whole
	// reply as a single chunk.
	StreamChat(ctx context.Context, messages []Message, onChunk func(delta string) error) error
}
