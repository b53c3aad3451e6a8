package builders

import (
	"fmt"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// OutlineBuilder helps build Outline entities for testing
type OutlineBuilder struct {
	slides []entities.SlideDescriptor
}

// NewOutlineBuilder creates an empty outline builder
func NewOutlineBuilder() *OutlineBuilder {
	return &OutlineBuilder{}
}

// WithSlide appends a descriptor
func (b *OutlineBuilder) WithSlide(title string, content ...string) *OutlineBuilder {
	if content == nil {
		content = []string{}
	}
	b.slides = append(b.slides, entities.SlideDescriptor{Title: title, Content: content})
	return b
}

// WithNotes sets the notes of the last descriptor
func (b *OutlineBuilder) WithNotes(notes string) *OutlineBuilder {
	if len(b.slides) > 0 {
		b.slides[len(b.slides)-1].Notes = notes
	}
	return b
}

// WithSlideCount appends n numbered descriptors with two bullets each
func (b *OutlineBuilder) WithSlideCount(n int) *OutlineBuilder {
	start := len(b.slides)
	for i := 1; i <= n; i++ {
		b.WithSlide(fmt.Sprintf("Slide %d", start+i), "First point", "Second point")
	}
	return b
}

// Build returns a copy of the outline
func (b *OutlineBuilder) Build() *entities.Outline {
	slides := make([]entities.SlideDescriptor, len(b.slides))
	for i, s := range b.slides {
		s.Content = append([]string{}, s.Content...)
		slides[i] = s
	}
	return &entities.Outline{Slides: slides}
}

// IntroOutline is the single-slide outline used across end-to-end tests
func IntroOutline() *entities.Outline {
	return NewOutlineBuilder().WithSlide("Intro", "Point A", "Point B").Build()
}

// IntroResponse is a provider answer that decodes to IntroOutline
const IntroResponse = `{"slides":[{"title":"Intro","content":["Point A","Point B"],"notes":""}]}`
