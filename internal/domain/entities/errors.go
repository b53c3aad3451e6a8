package entities

import (
	"errors"
	"fmt"
)

// Errors returned across the generation pipeline
var (
	// ErrInvalidRequest is returned when a generation request is missing required input
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrUnsupportedProvider is returned for provider names other than openai and gemini
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrProviderStatus is returned when the provider answers with a non-200 status
	ErrProviderStatus = errors.New("provider returned an error status")

	// ErrEmptyCompletion is returned when the provider response has no choices
	ErrEmptyCompletion = errors.New("provider returned no completion")

	// ErrInvalidOutline is returned when no JSON object can be parsed from the response
	ErrInvalidOutline = errors.New("response is not a valid outline")

	// ErrMissingSlides is returned when the parsed object has no slides key
	ErrMissingSlides = errors.New("response has no slides key")

	// ErrInvalidTemplate is returned when the uploaded template is not a usable .pptx
	ErrInvalidTemplate = errors.New("invalid presentation template")
)

// rawEchoLimit caps how much of a provider response is echoed back in errors
const rawEchoLimit = 500

// ProviderError describes a non-200 answer from the chat-completion endpoint
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s returned status %d: %s", e.Provider, e.StatusCode, Truncate(e.Body, rawEchoLimit))
}

// Unwrap lets errors.Is match ErrProviderStatus
func (e *ProviderError) Unwrap() error {
	return ErrProviderStatus
}

// OutlineError carries the raw provider response that could not be turned into an outline
type OutlineError struct {
	Err error
	Raw string
}

func (e *OutlineError) Error() string {
	if errors.Is(e.Err, ErrMissingSlides) {
		return "LLM did not return a 'slides' key in the JSON. Response received: " + Truncate(e.Raw, rawEchoLimit)
	}
	return fmt.Sprintf("%v. Response received: %s", e.Err, Truncate(e.Raw, rawEchoLimit))
}

func (e *OutlineError) Unwrap() error {
	return e.Err
}

// Truncate returns at most limit runes of s
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
