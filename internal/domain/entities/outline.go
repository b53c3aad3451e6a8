package entities

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SlideDescriptor is one entry of an outline returned by the provider
type SlideDescriptor struct {
	// Title is placed in the layout's title placeholder
	Title string `json:"title"`

	// Content holds short bullet lines, one paragraph each
	Content []string `json:"content"`

	// Notes becomes the slide's speaker notes when non-empty
	Notes string `json:"notes"`
}

// UnmarshalJSON decodes a descriptor leniently. Missing fields keep their zero
// value, a string content becomes a single line and list notes are joined.
func (d *SlideDescriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title   json.RawMessage `json:"title"`
		Content json.RawMessage `json:"content"`
		Notes   json.RawMessage `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Title = scalarText(raw.Title)
	d.Content = lineList(raw.Content)
	d.Notes = strings.Join(lineList(raw.Notes), "\n")
	return nil
}

// HasNotes returns true if the descriptor carries speaker notes
func (d SlideDescriptor) HasNotes() bool {
	return strings.TrimSpace(d.Notes) != ""
}

// Outline is the parsed provider response
type Outline struct {
	Slides []SlideDescriptor `json:"slides"`
}

// SlideCount returns the number of descriptors
func (o *Outline) SlideCount() int {
	if o == nil {
		return 0
	}
	return len(o.Slides)
}

// Titles returns the descriptor titles in order
func (o *Outline) Titles() []string {
	if o == nil {
		return nil
	}
	titles := make([]string, len(o.Slides))
	for i, s := range o.Slides {
		titles[i] = s.Title
	}
	return titles
}

// scalarText renders a JSON value as plain text. Strings are unquoted, null is
// empty and anything else keeps its compact JSON form.
func scalarText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// lineList turns a JSON array or scalar into a list of lines
func lineList(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []string{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		text := scalarText(trimmed)
		if text == "" {
			return []string{}
		}
		return []string{text}
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, scalarText(item))
	}
	return lines
}
