package services

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// textSanitizer strips any markup the model put into titles, bullets or notes
var textSanitizer = bluemonday.StrictPolicy()

// ExtractJSON locates a JSON value in free text. It slices from the first '{'
// to the last '}' and parses that; if the slice is missing or invalid it parses
// the whole trimmed text instead.
func ExtractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	var whole interface{}
	if err := json.Unmarshal([]byte(text), &whole); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidOutline, err)
	}
	return json.RawMessage(text), nil
}

// DecodeOutline extracts the outline object from a provider response. The
// only structural requirement is a top-level slides key.
func DecodeOutline(raw string) (*entities.Outline, error) {
	doc, err := ExtractJSON(raw)
	if err != nil {
		return nil, &entities.OutlineError{Err: err, Raw: raw}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return nil, &entities.OutlineError{Err: entities.ErrMissingSlides, Raw: raw}
	}

	slidesRaw, ok := top["slides"]
	if !ok {
		return nil, &entities.OutlineError{Err: entities.ErrMissingSlides, Raw: raw}
	}

	outline := &entities.Outline{Slides: []entities.SlideDescriptor{}}
	if string(slidesRaw) != "null" {
		if err := json.Unmarshal(slidesRaw, &outline.Slides); err != nil {
			return nil, &entities.OutlineError{
				Err: fmt.Errorf("%w: slides: %v", entities.ErrInvalidOutline, err),
				Raw: raw,
			}
		}
	}

	CleanOutline(outline)
	return outline, nil
}

// CleanOutline strips markup and surrounding whitespace from every field
func CleanOutline(outline *entities.Outline) {
	if outline == nil {
		return
	}
	for i := range outline.Slides {
		s := &outline.Slides[i]
		s.Title = cleanText(s.Title)
		s.Notes = cleanText(s.Notes)
		for j := range s.Content {
			s.Content[j] = cleanText(s.Content[j])
		}
		if s.Content == nil {
			s.Content = []string{}
		}
	}
}

// cleanText sanitizes with the strict policy and turns the escaped entities
// back into plain characters, since the deck writer escapes on its own
func cleanText(s string) string {
	if s == "" {
		return s
	}
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(textSanitizer.Sanitize(s)))
}
