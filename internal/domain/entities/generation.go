package entities

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// DefaultProvider is used when a request names no provider
	DefaultProvider = "openai"

	// DefaultModel is used when a request names no model
	DefaultModel = "gpt-4o-mini"

	// DefaultOutputFilename is the download name of generated decks
	DefaultOutputFilename = "generated_presentation.pptx"

	// PresentationMIMEType is the media type of .pptx files
	PresentationMIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// GenerationRequest carries one text-to-deck request
type GenerationRequest struct {
	Text         string
	Guidance     string
	Provider     string
	Model        string
	APIKey       string
	TemplateName string
	Template     io.Reader
}

// ApplyDefaults fills provider and model when they are blank
func (r *GenerationRequest) ApplyDefaults() {
	if strings.TrimSpace(r.Provider) == "" {
		r.Provider = DefaultProvider
	}
	if strings.TrimSpace(r.Model) == "" {
		r.Model = DefaultModel
	}
}

// ValidateForOutline checks the fields needed to ask the provider for an outline
func (r *GenerationRequest) ValidateForOutline() error {
	if r.Text == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if r.APIKey == "" {
		return fmt.Errorf("%w: api_key is required", ErrInvalidRequest)
	}
	return nil
}

// Validate checks the fields needed for a full generation
func (r *GenerationRequest) Validate() error {
	if err := r.ValidateForOutline(); err != nil {
		return err
	}
	if r.Template == nil {
		return fmt.Errorf("%w: template file is required", ErrInvalidRequest)
	}
	return nil
}

// GenerationResult is the outcome of a successful generation
type GenerationResult struct {
	ID       string            `json:"id"`
	Outline  *Outline          `json:"outline"`
	Report   *PopulationReport `json:"report"`
	Filename string            `json:"filename"`
	Document []byte            `json:"-"`
}

// Generation event types published while a request is processed
const (
	EventGenerationStarted = "generation_started"
	EventOutlineReady      = "outline_ready"
	EventDeckReady         = "deck_ready"
	EventGenerationFailed  = "generation_failed"
)

// GenerationEvent reports progress of a generation to listeners
type GenerationEvent struct {
	Type      string                 `json:"type"`
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewGenerationEvent creates a new generation event
func NewGenerationEvent(eventType, id string, data map[string]interface{}) GenerationEvent {
	return GenerationEvent{
		Type:      eventType,
		ID:        id,
		Timestamp: time.Now(),
		Data:      data,
	}
}
