package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// GoldmarkParser builds slide outlines from authored markdown.
//
// Slides are separated by a line holding only "---" (outside code fences) or
// start at a level 1 or 2 heading once the current slide has a title or
// content. The first heading of a slide is its title; paragraphs, list items,
// table rows and code lines become content lines; "Note:" lines become the
// speaker notes.
type GoldmarkParser struct {
	md    goldmark.Markdown
	notes *NotesExtractor
}

// NewGoldmarkParser creates a new Goldmark-based outline parser
func NewGoldmarkParser() *GoldmarkParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,           // GitHub Flavored Markdown
			extension.Table,         // Tables
			extension.Strikethrough, // ~~strikethrough~~
			extension.TaskList,      // - [ ] task lists
		),
	)

	return &GoldmarkParser{md: md, notes: NewNotesExtractor()}
}

// Parse parses markdown content into an outline
func (p *GoldmarkParser) Parse(ctx context.Context, content []byte) (*entities.Outline, error) {
	frontmatter, remaining := extractFrontmatter(content)

	outline := &entities.Outline{Slides: []entities.SlideDescriptor{}}
	for _, chunk := range splitSlides(remaining) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outline.Slides = append(outline.Slides, p.parseChunk(chunk)...)
	}

	if title, ok := getStringFromMap(frontmatter, "title"); ok && len(outline.Slides) > 0 && outline.Slides[0].Title == "" {
		outline.Slides[0].Title = title
	}

	if len(outline.Slides) == 0 {
		return nil, fmt.Errorf("%w: markdown outline has no slides", entities.ErrInvalidOutline)
	}
	return outline, nil
}

// slideAccumulator collects descriptors while walking one chunk
type slideAccumulator struct {
	slides  []entities.SlideDescriptor
	current entities.SlideDescriptor
	notes   []string
}

func (a *slideAccumulator) empty() bool {
	return a.current.Title == "" && len(a.current.Content) == 0 && len(a.notes) == 0
}

func (a *slideAccumulator) flush() {
	if a.empty() {
		return
	}
	a.current.Notes = strings.Join(a.notes, "\n")
	if a.current.Content == nil {
		a.current.Content = []string{}
	}
	a.slides = append(a.slides, a.current)
	a.current = entities.SlideDescriptor{}
	a.notes = nil
}

func (a *slideAccumulator) addLine(line string) {
	line = strings.TrimSpace(line)
	if line != "" {
		a.current.Content = append(a.current.Content, line)
	}
}

// parseChunk walks the top-level blocks of one "---" delimited chunk
func (p *GoldmarkParser) parseChunk(chunk []byte) []entities.SlideDescriptor {
	doc := p.md.Parser().Parse(text.NewReader(chunk))

	acc := &slideAccumulator{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(acc, n, chunk)
	}
	acc.flush()
	return acc.slides
}

func (p *GoldmarkParser) block(acc *slideAccumulator, n ast.Node, source []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		title := strings.Join(inlineLines(node, source), " ")
		switch {
		case acc.current.Title == "" && len(acc.current.Content) == 0:
			acc.current.Title = title
		case node.Level <= 2:
			acc.flush()
			acc.current.Title = title
		default:
			acc.addLine(title)
		}

	case *ast.ThematicBreak:
		acc.flush()

	case *ast.Paragraph, *ast.TextBlock:
		content, notes := p.notes.ExtractNotes(inlineLines(node, source))
		acc.addLine(strings.Join(content, " "))
		acc.notes = append(acc.notes, notes...)

	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			p.listItem(acc, item, source)
		}

	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			p.block(acc, c, source)
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			acc.addLine(strings.TrimRight(string(segment.Value(source)), "\r\n"))
		}

	case *extast.Table:
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, strings.Join(inlineLines(cell, source), " "))
			}
			acc.addLine(strings.Join(cells, " | "))
		}
	}
}

// listItem turns an item's own text into one line and flattens nested lists
// after it
func (p *GoldmarkParser) listItem(acc *slideAccumulator, item ast.Node, source []byte) {
	var parts []string
	var nested []ast.Node
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.List:
			nested = append(nested, c)
		case *ast.Paragraph, *ast.TextBlock:
			parts = append(parts, inlineLines(c, source)...)
		}
	}
	acc.addLine(strings.Join(parts, " "))
	for _, list := range nested {
		p.block(acc, list, source)
	}
}

// inlineLines returns the plain text of an inline container, one entry per
// source line
func inlineLines(n ast.Node, source []byte) []string {
	var lines []string
	var b strings.Builder

	var walk func(parent ast.Node)
	walk = func(parent ast.Node) {
		for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					lines = append(lines, b.String())
					b.Reset()
				}
			case *ast.String:
				b.Write(node.Value)
			case *ast.AutoLink:
				b.Write(node.Label(source))
			case *ast.RawHTML:
			case *extast.TaskCheckBox:
				if node.IsChecked {
					b.WriteString("[x] ")
				} else {
					b.WriteString("[ ] ")
				}
			default:
				walk(c)
			}
		}
	}
	walk(n)
	lines = append(lines, b.String())

	out := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// extractFrontmatter extracts YAML frontmatter from markdown content
func extractFrontmatter(content []byte) (map[string]interface{}, []byte) {
	// Check if content starts with frontmatter delimiter
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return nil, content
	}

	// Find the end of frontmatter
	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1

	for i := 1; i < len(lines); i++ {
		line := bytes.TrimSpace(lines[i])
		if bytes.Equal(line, []byte("---")) {
			endIndex = i
			break
		}
	}

	if endIndex == -1 {
		// No closing delimiter found
		return nil, content
	}

	frontmatterBytes := bytes.Join(lines[1:endIndex], []byte("\n"))

	var frontmatter map[string]interface{}
	if len(bytes.TrimSpace(frontmatterBytes)) == 0 {
		frontmatter = make(map[string]interface{})
	} else if err := yaml.Unmarshal(frontmatterBytes, &frontmatter); err != nil {
		// Not YAML; the leading rule was a slide separator
		return nil, content
	} else if frontmatter == nil {
		return nil, content
	}

	return frontmatter, bytes.Join(lines[endIndex+1:], []byte("\n"))
}

// splitSlides splits content on "---" lines that are not inside a code fence
func splitSlides(content []byte) [][]byte {
	contentStr := strings.ReplaceAll(string(content), "\r\n", "\n")

	var slides [][]byte
	var current []string
	fence := ""

	emit := func() {
		trimmed := strings.TrimSpace(strings.Join(current, "\n"))
		if trimmed != "" {
			slides = append(slides, []byte(trimmed))
		}
		current = current[:0]
	}

	for _, line := range strings.Split(contentStr, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence != "":
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
		case strings.HasPrefix(trimmed, "```"):
			fence = "```"
		case strings.HasPrefix(trimmed, "~~~"):
			fence = "~~~"
		case trimmed == "---":
			emit()
			continue
		}
		current = append(current, line)
	}
	emit()

	return slides
}

// getStringFromMap safely extracts a string value from a map
func getStringFromMap(m map[string]interface{}, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	value, ok := m[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// Ensure GoldmarkParser implements ports.OutlineParser
var _ ports.OutlineParser = (*GoldmarkParser)(nil)
