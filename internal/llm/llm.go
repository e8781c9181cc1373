package llm

import "context"

// Message represents a conversation message.
type Message struct {
	Sender  string // "agent" or "lead"
	Content string
}

// Client defines the interface for language-model providers.
type Client interface {
	// Generate produces the agent's next reply from the current utterance,
	// the conversation history and the known lead fields.
	Generate(ctx context.Context, utterance string, history []Message, fields map[string]string) (string, error)

	// Extract pulls lead attributes out of an utterance. The returned map
	// uses whatever labels the model chose; callers normalize them. A model
	// that returns no parseable structure yields an empty map and an error.
	Extract(ctx context.Context, utterance string, fields map[string]string) (map[string]string, error)

	// DetectIntent classifies the utterance into one of the known intents.
	// The result is informational only; conversation flow never branches on it.
	DetectIntent(ctx context.Context, utterance string) (string, error)
}
