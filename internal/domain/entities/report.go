package entities

import "fmt"

// FieldStatus records what happened to one field of a generated slide
type FieldStatus string

const (
	// FieldApplied means the value landed where the layout intended
	FieldApplied FieldStatus = "applied"

	// FieldDegraded means the value was dropped or placed in a fallback shape
	FieldDegraded FieldStatus = "degraded"

	// FieldSkipped means there was nothing to place
	FieldSkipped FieldStatus = "skipped"
)

// SlideOutcome describes how a single descriptor was written into the deck
type SlideOutcome struct {
	Index       int         `json:"index"`
	Title       string      `json:"title"`
	TitleStatus FieldStatus `json:"title_status"`
	BodyStatus  FieldStatus `json:"body_status"`
	NotesStatus FieldStatus `json:"notes_status"`
	Detail      []string    `json:"detail,omitempty"`
}

// Degraded returns true if any field of the slide lost data or fell back
func (o SlideOutcome) Degraded() bool {
	return o.TitleStatus == FieldDegraded ||
		o.BodyStatus == FieldDegraded ||
		o.NotesStatus == FieldDegraded
}

// PopulationReport summarizes a populated deck
type PopulationReport struct {
	LayoutIndex   int            `json:"layout_index"`
	LayoutName    string         `json:"layout_name"`
	RemovedSlides int            `json:"removed_slides"`
	CreatedSlides int            `json:"created_slides"`
	Slides        []SlideOutcome `json:"slides"`
}

// Degraded returns true if any slide degraded
func (r *PopulationReport) Degraded() bool {
	return r.DegradedCount() > 0
}

// DegradedCount returns the number of slides with at least one degraded field
func (r *PopulationReport) DegradedCount() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, s := range r.Slides {
		if s.Degraded() {
			count++
		}
	}
	return count
}

// Warnings returns one line per degraded detail
func (r *PopulationReport) Warnings() []string {
	if r == nil {
		return nil
	}
	var warnings []string
	for _, s := range r.Slides {
		for _, d := range s.Detail {
			warnings = append(warnings, fmt.Sprintf("slide %d (%q): %s", s.Index+1, s.Title, d))
		}
	}
	return warnings
}

// LayoutInfo describes one slide layout of a template
type LayoutInfo struct {
	Index        int      `json:"index"`
	Name         string   `json:"name"`
	Placeholders []string `json:"placeholders"`
}

// TemplateInfo describes a template's layouts and existing slides
type TemplateInfo struct {
	SlideCount     int          `json:"slide_count"`
	HasNotesMaster bool         `json:"has_notes_master"`
	ChosenLayout   int          `json:"chosen_layout"`
	Layouts        []LayoutInfo `json:"layouts"`
}
