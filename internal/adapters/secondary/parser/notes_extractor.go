package parser

import (
	"regexp"
	"strings"
)

// NotesExtractor separates speaker notes from slide text. A line that starts
// with "Note:" (or "Notes:") belongs to the notes.
type NotesExtractor struct {
	noteRegex *regexp.Regexp
}

// NewNotesExtractor creates a new notes extractor
func NewNotesExtractor() *NotesExtractor {
	return &NotesExtractor{
		noteRegex: regexp.MustCompile(`^(?i)notes?:\s*(.*)$`),
	}
}

// ExtractNotes splits lines into content lines and note lines. Empty notes
// are dropped.
func (e *NotesExtractor) ExtractNotes(lines []string) (content []string, notes []string) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if note, ok := e.Note(trimmed); ok {
			if note != "" {
				notes = append(notes, note)
			}
			continue
		}
		content = append(content, line)
	}
	return content, notes
}

// Note returns the note text of a single line
func (e *NotesExtractor) Note(line string) (string, bool) {
	match := e.noteRegex.FindStringSubmatch(line)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}
