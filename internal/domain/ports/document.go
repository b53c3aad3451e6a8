package ports

import (
	"context"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// DeckPopulator fills a presentation template with an outline
type DeckPopulator interface {
	// Populate reads the template at templatePath, writes one slide per
	// descriptor, drops the template's original slides and saves to outputPath
	Populate(ctx context.Context, templatePath, outputPath string, outline *entities.Outline) (*entities.PopulationReport, error)

	// Inspect describes the layouts and slides of a template
	Inspect(ctx context.Context, templatePath string) (*entities.TemplateInfo, error)
}
