package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// GenerationOptions carries the configured request defaults
type GenerationOptions struct {
	DefaultProvider string
	DefaultModel    string
	OutputFilename  string
}

// GenerationService implements ports.GenerationService
type GenerationService struct {
	completer ports.ChatCompleter
	populator ports.DeckPopulator
	scratch   ports.ScratchSpace
	events    ports.EventPublisher
	options   GenerationOptions
	logger    *slog.Logger
}

// NewGenerationService creates a generation service. events may be nil.
func NewGenerationService(
	completer ports.ChatCompleter,
	populator ports.DeckPopulator,
	scratch ports.ScratchSpace,
	events ports.EventPublisher,
	options GenerationOptions,
	logger *slog.Logger,
) *GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	if options.OutputFilename == "" {
		options.OutputFilename = entities.DefaultOutputFilename
	}
	return &GenerationService{
		completer: completer,
		populator: populator,
		scratch:   scratch,
		events:    events,
		options:   options,
		logger:    logger.With("service", "generation"),
	}
}

// Generate turns the request text into a populated deck
func (s *GenerationService) Generate(ctx context.Context, req *entities.GenerationRequest) (*entities.GenerationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", entities.ErrInvalidRequest)
	}
	s.applyDefaults(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.publish(entities.EventGenerationStarted, id, map[string]interface{}{
		"provider": req.Provider,
		"model":    req.Model,
		"template": req.TemplateName,
	})

	result, err := s.generate(ctx, id, req)
	if err != nil {
		s.fail(id, err)
		return nil, err
	}
	return result, nil
}

func (s *GenerationService) generate(ctx context.Context, id string, req *entities.GenerationRequest) (result *entities.GenerationResult, err error) {
	scratch, err := s.scratch.Acquire(ctx, "deckgen-")
	if err != nil {
		return nil, fmt.Errorf("acquiring scratch space: %w", err)
	}
	defer func() {
		if closeErr := scratch.Close(); closeErr != nil {
			s.logger.Warn("Failed to remove scratch space",
				slog.String("id", id),
				slog.String("error", closeErr.Error()))
		}
	}()

	templatePath, err := scratch.WriteFrom(templateFileName(req.TemplateName), req.Template)
	if err != nil {
		return nil, fmt.Errorf("saving template: %w", err)
	}

	outline, err := s.draft(ctx, id, req)
	if err != nil {
		return nil, err
	}

	return s.populate(ctx, id, scratch, templatePath, outline)
}

// DraftOutline asks the provider for an outline without touching a template
func (s *GenerationService) DraftOutline(ctx context.Context, req *entities.GenerationRequest) (*entities.Outline, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", entities.ErrInvalidRequest)
	}
	s.applyDefaults(req)
	if err := req.ValidateForOutline(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	outline, err := s.draft(ctx, id, req)
	if err != nil {
		s.fail(id, err)
		return nil, err
	}
	return outline, nil
}

// Render populates a template from an outline that did not come from a provider
func (s *GenerationService) Render(ctx context.Context, outline *entities.Outline, templateName string, template io.Reader) (*entities.GenerationResult, error) {
	if outline == nil {
		return nil, fmt.Errorf("%w: outline cannot be nil", entities.ErrInvalidRequest)
	}
	if template == nil {
		return nil, fmt.Errorf("%w: template file is required", entities.ErrInvalidRequest)
	}

	id := uuid.NewString()
	s.publish(entities.EventGenerationStarted, id, map[string]interface{}{
		"template": templateName,
		"source":   "outline",
	})

	scratch, err := s.scratch.Acquire(ctx, "deckgen-")
	if err != nil {
		err = fmt.Errorf("acquiring scratch space: %w", err)
		s.fail(id, err)
		return nil, err
	}
	defer func() { _ = scratch.Close() }()

	templatePath, err := scratch.WriteFrom(templateFileName(templateName), template)
	if err != nil {
		err = fmt.Errorf("saving template: %w", err)
		s.fail(id, err)
		return nil, err
	}

	result, err := s.populate(ctx, id, scratch, templatePath, outline)
	if err != nil {
		s.fail(id, err)
		return nil, err
	}
	return result, nil
}

// draft builds the prompt, calls the provider and decodes the outline
func (s *GenerationService) draft(ctx context.Context, id string, req *entities.GenerationRequest) (*entities.Outline, error) {
	prompt := BuildPrompt(req.Text, req.Guidance)

	s.logger.Info("Requesting outline",
		slog.String("id", id),
		slog.String("provider", req.Provider),
		slog.String("model", req.Model),
		slog.Int("prompt_length", len(prompt)))

	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		Provider: req.Provider,
		Model:    req.Model,
		APIKey:   req.APIKey,
		System:   SystemPrompt,
		Prompt:   prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("calling provider: %w", err)
	}

	outline, err := DecodeOutline(raw)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Outline decoded",
		slog.String("id", id),
		slog.Int("slides", outline.SlideCount()))
	s.publish(entities.EventOutlineReady, id, map[string]interface{}{
		"slides": outline.SlideCount(),
	})

	return outline, nil
}

// populate writes the outline into the template and reads the result back
func (s *GenerationService) populate(ctx context.Context, id string, scratch ports.Scratch, templatePath string, outline *entities.Outline) (*entities.GenerationResult, error) {
	outputPath := scratch.Path("output.pptx")

	report, err := s.populator.Populate(ctx, templatePath, outputPath, outline)
	if err != nil {
		return nil, fmt.Errorf("populating template: %w", err)
	}

	for _, warning := range report.Warnings() {
		s.logger.Warn("Slide degraded", slog.String("id", id), slog.String("detail", warning))
	}

	document, err := os.ReadFile(outputPath) // #nosec G304 - path is inside our scratch directory
	if err != nil {
		return nil, fmt.Errorf("reading generated deck: %w", err)
	}

	s.logger.Info("Deck generated",
		slog.String("id", id),
		slog.Int("slides", report.CreatedSlides),
		slog.Int("removed", report.RemovedSlides),
		slog.Int("degraded", report.DegradedCount()),
		slog.Int("bytes", len(document)))
	s.publish(entities.EventDeckReady, id, map[string]interface{}{
		"slides":   report.CreatedSlides,
		"degraded": report.DegradedCount(),
		"bytes":    len(document),
	})

	return &entities.GenerationResult{
		ID:       id,
		Outline:  outline,
		Report:   report,
		Filename: s.options.OutputFilename,
		Document: document,
	}, nil
}

func (s *GenerationService) applyDefaults(req *entities.GenerationRequest) {
	if strings.TrimSpace(req.Provider) == "" {
		req.Provider = s.options.DefaultProvider
	}
	if strings.TrimSpace(req.Model) == "" {
		req.Model = s.options.DefaultModel
	}
	req.ApplyDefaults()
}

func (s *GenerationService) publish(eventType, id string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(entities.NewGenerationEvent(eventType, id, data))
}

func (s *GenerationService) fail(id string, err error) {
	level := slog.LevelError
	if errors.Is(err, context.Canceled) {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "Generation failed",
		slog.String("id", id),
		slog.String("error", err.Error()))
	s.publish(entities.EventGenerationFailed, id, map[string]interface{}{
		"error": err.Error(),
	})
}

// templateFileName keeps the upload's extension so the package reader sees a
// familiar name; anything unusual falls back to .pptx
func templateFileName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pptx", ".potx":
		return "template" + ext
	default:
		return "template.pptx"
	}
}

// Ensure GenerationService implements ports.GenerationService
var _ ports.GenerationService = (*GenerationService)(nil)
