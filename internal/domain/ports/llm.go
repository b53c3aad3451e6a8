package ports

import "context"

// CompletionRequest is a single chat-completion call
type CompletionRequest struct {
	// Provider selects the endpoint: openai or gemini
	Provider string

	// Model is passed through to the provider
	Model string

	// APIKey is sent as a bearer token
	APIKey string

	// System is sent as the system message when non-empty
	System string

	// Prompt is the user message
	Prompt string
}

// ChatCompleter sends a prompt to a chat-completion endpoint and returns the
// first choice's message content
type ChatCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
