package pptx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// Populator implements ports.DeckPopulator for .pptx templates
type Populator struct {
	logger *slog.Logger
}

// NewPopulator creates a populator
func NewPopulator(logger *slog.Logger) *Populator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Populator{logger: logger.With("component", "pptx")}
}

// Populate appends one slide per descriptor using the first layout with at
// least two placeholders, then removes the template's original slides
func (p *Populator) Populate(ctx context.Context, templatePath, outputPath string, outline *entities.Outline) (*entities.PopulationReport, error) {
	pres, err := p.open(templatePath)
	if err != nil {
		return nil, err
	}

	layouts, err := pres.layouts()
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("%w: template has no slide layouts", entities.ErrInvalidTemplate)
	}
	chosen := chooseLayout(layouts)
	originals := pres.slides()

	p.logger.Debug("Populating template",
		slog.String("layout", chosen.Name),
		slog.Int("layout_index", chosen.Index),
		slog.Int("original_slides", len(originals)),
		slog.Int("descriptors", outline.SlideCount()))

	report := &entities.PopulationReport{
		LayoutIndex:   chosen.Index,
		LayoutName:    chosen.Name,
		RemovedSlides: len(originals),
		Slides:        make([]entities.SlideOutcome, 0, outline.SlideCount()),
	}

	if outline != nil {
		for i, desc := range outline.Slides {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcome, err := pres.appendSlide(chosen, desc)
			if err != nil {
				return nil, fmt.Errorf("writing slide %d: %w", i+1, err)
			}
			outcome.Index = i
			for _, detail := range outcome.Detail {
				p.logger.Warn("Slide degraded",
					slog.Int("slide", i+1),
					slog.String("title", desc.Title),
					slog.String("detail", detail))
			}
			report.Slides = append(report.Slides, outcome)
			report.CreatedSlides++
		}
	}

	for _, ref := range originals {
		pres.removeSlide(ref)
	}

	if err := pres.save(outputPath); err != nil {
		return nil, fmt.Errorf("saving deck: %w", err)
	}

	p.logger.Info("Template populated",
		slog.Int("created", report.CreatedSlides),
		slog.Int("removed", report.RemovedSlides),
		slog.Int("degraded", report.DegradedCount()))

	return report, nil
}

// Inspect lists the layouts of the first slide master and the existing slides
func (p *Populator) Inspect(_ context.Context, templatePath string) (*entities.TemplateInfo, error) {
	pres, err := p.open(templatePath)
	if err != nil {
		return nil, err
	}
	layouts, err := pres.layouts()
	if err != nil {
		return nil, err
	}

	info := &entities.TemplateInfo{
		SlideCount:     len(pres.slides()),
		HasNotesMaster: pres.notesMasterPart() != "",
		ChosenLayout:   -1,
		Layouts:        make([]entities.LayoutInfo, 0, len(layouts)),
	}
	if len(layouts) > 0 {
		info.ChosenLayout = chooseLayout(layouts).Index
	}
	for _, l := range layouts {
		info.Layouts = append(info.Layouts, l.info())
	}
	return info, nil
}

func (p *Populator) open(templatePath string) (*presentation, error) {
	pkg, err := OpenPackage(templatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidTemplate, err)
	}
	return openPresentation(pkg)
}

// Ensure Populator implements ports.DeckPopulator
var _ ports.DeckPopulator = (*Populator)(nil)
