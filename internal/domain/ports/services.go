package ports

import (
	"context"
	"io"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// GenerationService turns text into a populated deck
type GenerationService interface {
	// Generate runs prompt, provider, outline decoding and population
	Generate(ctx context.Context, req *entities.GenerationRequest) (*entities.GenerationResult, error)

	// DraftOutline stops after the outline is decoded
	DraftOutline(ctx context.Context, req *entities.GenerationRequest) (*entities.Outline, error)

	// Render populates a template from an outline built elsewhere
	Render(ctx context.Context, outline *entities.Outline, templateName string, template io.Reader) (*entities.GenerationResult, error)
}
