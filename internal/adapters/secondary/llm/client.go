package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// Default chat-completion endpoints per provider
const (
	OpenAIEndpoint = "https://aipipe.org/openai/v1/chat/completions"
	GeminiEndpoint = "http://aipipe.org/openrouter/v1/chat/completions"
)

// maxResponseBytes bounds how much of a provider answer is read
const maxResponseBytes = 8 << 20

// Config holds the request shape shared by every completion
type Config struct {
	Endpoints        map[string]string
	Temperature      float64
	MaxTokens        int
	StructuredOutput bool
	Timeout          time.Duration
	UserAgent        string
}

// DefaultConfig returns the built-in request settings
func DefaultConfig() Config {
	return Config{
		Endpoints: map[string]string{
			"openai": OpenAIEndpoint,
			"gemini": GeminiEndpoint,
		},
		Temperature:      0.2,
		MaxTokens:        1200,
		StructuredOutput: true,
		Timeout:          120 * time.Second,
		UserAgent:        "deckgen",
	}
}

// ConfigFrom builds a client config from the [provider] section. Endpoint
// overrides replace the built-in URL of the same provider.
func ConfigFrom(p entities.ProviderConfig) Config {
	config := DefaultConfig()
	for name, endpoint := range p.Endpoints {
		config.Endpoints[normalizeProvider(name)] = endpoint
	}
	config.Temperature = p.GetTemperature()
	config.MaxTokens = p.GetMaxTokens()
	config.StructuredOutput = p.GetStructuredOutput()
	config.Timeout = p.GetTimeout()
	if p.UserAgent != "" {
		config.UserAgent = p.UserAgent
	}
	return config
}

// Client implements ports.ChatCompleter against OpenAI-compatible endpoints
type Client struct {
	httpClient ports.HTTPClient
	config     Config
	logger     *slog.Logger
}

// NewClient creates a client with its own timeout-bound HTTP client
func NewClient(config Config, logger *slog.Logger) *Client {
	httpClient := ports.NewRealHTTPClient(ports.HTTPClientConfig{
		Timeout:   config.Timeout,
		UserAgent: config.UserAgent,
	})
	return NewClientWithHTTP(config, httpClient, logger)
}

// NewClientWithHTTP creates a client around an existing HTTP client
func NewClientWithHTTP(config Config, httpClient ports.HTTPClient, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		config:     config,
		logger:     logger.With("component", "llm"),
	}
}

// Providers returns the provider names the client can reach
func (c *Client) Providers() []string {
	names := make([]string, 0, len(c.config.Endpoints))
	for name := range c.config.Endpoints {
		names = append(names, name)
	}
	return names
}

// Complete sends one chat completion and returns the first choice's content.
// A non-200 answer is a *entities.ProviderError, never content.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	provider := normalizeProvider(req.Provider)
	endpoint, ok := c.config.Endpoints[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", entities.ErrUnsupportedProvider, req.Provider)
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	if c.config.StructuredOutput {
		body.ResponseFormat = outlineFormat()
	}

	content, err := c.send(ctx, provider, endpoint, req.APIKey, body)
	if body.ResponseFormat != nil && rejectsResponseFormat(err) {
		c.logger.Warn("Provider rejected structured output, retrying without it",
			slog.String("provider", provider),
			slog.String("model", req.Model))
		body.ResponseFormat = nil
		content, err = c.send(ctx, provider, endpoint, req.APIKey, body)
	}
	return content, err
}

func (c *Client) send(ctx context.Context, provider, endpoint, apiKey string, body chatRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	c.logger.Debug("Sending completion",
		slog.String("provider", provider),
		slog.String("model", body.Model),
		slog.Bool("structured", body.ResponseFormat != nil))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s response: %w", provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Provider returned error status",
			slog.String("provider", provider),
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)))
		return "", &entities.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decoding %s response: %w", provider, err)
	}

	if decoded.Error != nil {
		return "", &entities.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       decoded.Error.Message,
		}
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w from %s", entities.ErrEmptyCompletion, provider)
	}

	content := decoded.Choices[0].Message.Content
	c.logger.Info("Completion received",
		slog.String("provider", provider),
		slog.Int("length", len(content)),
		slog.Duration("elapsed", time.Since(start)))

	return content, nil
}

// rejectsResponseFormat reports a 400 whose body blames the response_format
// field. Proxied models without json_schema support answer this way.
func rejectsResponseFormat(err error) bool {
	var perr *entities.ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusBadRequest {
		return false
	}
	body := strings.ToLower(perr.Body)
	return strings.Contains(body, "response_format") || strings.Contains(body, "json_schema")
}

// normalizeProvider folds provider names so "OpenAI" and "openai" match.
// Casers are stateful, so each call gets its own.
func normalizeProvider(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// Ensure Client implements ports.ChatCompleter
var _ ports.ChatCompleter = (*Client)(nil)
