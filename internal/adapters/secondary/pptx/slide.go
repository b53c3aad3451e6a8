package pptx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// slideDraft is a slide being assembled from a layout
type slideDraft struct {
	root   *etree.Element
	spTree *etree.Element
	nextID int

	// title and body point at the text bodies to fill, nil when absent
	title *etree.Element
	body  *etree.Element
}

// newSlideDraft creates a slide carrying clones of the layout's placeholders
func newSlideDraft(l *layout) *slideDraft {
	spTree := add(el("p:spTree"),
		add(el("p:nvGrpSpPr"),
			el("p:cNvPr", "id", "1", "name", ""),
			el("p:cNvGrpSpPr"),
			el("p:nvPr"),
		),
		el("p:grpSpPr"),
	)

	root := add(el("p:sld",
		"xmlns:a", nsDrawing,
		"xmlns:r", nsRelationships,
		"xmlns:p", nsPresentation,
	),
		add(el("p:cSld"), spTree),
		add(el("p:clrMapOvr"), el("a:masterClrMapping")),
	)

	d := &slideDraft{root: root, spTree: spTree, nextID: 2}
	for _, ph := range l.Placeholders {
		if !ph.cloneable() {
			continue
		}
		txBody := d.addPlaceholder(ph)
		switch {
		case txBody == nil:
		case ph.isTitle():
			if d.title == nil {
				d.title = txBody
			}
		case ph.Idx != "0":
			if d.body == nil {
				d.body = txBody
			}
		}
	}
	return d
}

func (d *slideDraft) takeID() int {
	id := d.nextID
	d.nextID++
	return id
}

// addPlaceholder appends an empty shape that inherits its position and
// style from the layout placeholder with the same type and idx
func (d *slideDraft) addPlaceholder(ph placeholder) *etree.Element {
	id := d.takeID()
	name := ph.Name
	if name == "" {
		name = fmt.Sprintf("%s %d", placeholderLabel(ph.Type), id-1)
	}

	phEl := el("p:ph")
	if ph.Type != "obj" {
		phEl.CreateAttr("type", ph.Type)
	}
	if ph.Orient != "" && ph.Orient != "horz" {
		phEl.CreateAttr("orient", ph.Orient)
	}
	if ph.Size != "" && ph.Size != "full" {
		phEl.CreateAttr("sz", ph.Size)
	}
	if ph.Idx != "0" {
		phEl.CreateAttr("idx", ph.Idx)
	}

	sp := add(el("p:sp"),
		add(el("p:nvSpPr"),
			el("p:cNvPr", "id", strconv.Itoa(id), "name", name),
			add(el("p:cNvSpPr"), el("a:spLocks", "noGrp", "1")),
			add(el("p:nvPr"), phEl),
		),
		el("p:spPr"),
	)

	var txBody *etree.Element
	if ph.textual() {
		txBody = emptyTextBody()
		add(sp, txBody)
	}
	add(d.spTree, sp)
	return txBody
}

// addTextBox appends the fallback body shape and returns its text body
func (d *slideDraft) addTextBox() *etree.Element {
	id := d.takeID()
	txBody := add(el("p:txBody"),
		add(el("a:bodyPr", "wrap", "square", "rtlCol", "0"), el("a:spAutoFit")),
		el("a:lstStyle"),
		el("a:p"),
	)

	sp := add(el("p:sp"),
		add(el("p:nvSpPr"),
			el("p:cNvPr", "id", strconv.Itoa(id), "name", fmt.Sprintf("TextBox %d", id-1)),
			el("p:cNvSpPr", "txBox", "1"),
			el("p:nvPr"),
		),
		add(el("p:spPr"),
			add(el("a:xfrm"),
				el("a:off", "x", strconv.Itoa(textBoxLeft), "y", strconv.Itoa(textBoxTop)),
				el("a:ext", "cx", strconv.Itoa(textBoxWidth), "cy", strconv.Itoa(textBoxHeight)),
			),
			add(el("a:prstGeom", "prst", "rect"), el("a:avLst")),
			el("a:noFill"),
		),
		txBody,
	)
	add(d.spTree, sp)
	return txBody
}

func emptyTextBody() *etree.Element {
	return add(el("p:txBody"), el("a:bodyPr"), el("a:lstStyle"), el("a:p"))
}

func placeholderLabel(phType string) string {
	switch phType {
	case "title", "ctrTitle":
		return "Title"
	case "subTitle":
		return "Subtitle"
	case "body":
		return "Text Placeholder"
	case "pic":
		return "Picture Placeholder"
	case "chart":
		return "Chart Placeholder"
	case "tbl":
		return "Table Placeholder"
	default:
		return "Content Placeholder"
	}
}

// setParagraphs replaces the paragraphs of a text body with one paragraph
// per line. No lines leaves a single empty paragraph. A newline inside a
// line becomes a soft break.
func setParagraphs(txBody *etree.Element, lines []string) {
	for _, p := range children(txBody, nsDrawing, "p") {
		txBody.RemoveChild(p)
	}

	if len(lines) == 0 {
		add(txBody, el("a:p"))
		return
	}
	for _, line := range lines {
		add(txBody, paragraph(line))
	}
}

// setText splits text on newlines into paragraphs
func setText(txBody *etree.Element, text string) {
	setParagraphs(txBody, strings.Split(text, "\n"))
}

func paragraph(line string) *etree.Element {
	p := el("a:p")
	for i, segment := range strings.Split(line, "\n") {
		if i > 0 {
			add(p, el("a:br"))
		}
		if segment == "" {
			continue
		}
		add(p, add(el("a:r"), textElement("a:t", segment)))
	}
	return p
}

// appendSlide writes one descriptor as a new slide at the end of the deck
func (p *presentation) appendSlide(l *layout, desc entities.SlideDescriptor) (entities.SlideOutcome, error) {
	part := p.nextPartName("ppt/slides/slide", ".xml")
	draft := newSlideDraft(l)
	outcome := entities.SlideOutcome{Title: desc.Title}

	switch {
	case desc.Title == "":
		outcome.TitleStatus = entities.FieldSkipped
	case draft.title == nil:
		outcome.TitleStatus = entities.FieldDegraded
		outcome.Detail = append(outcome.Detail, fmt.Sprintf("layout %q has no title placeholder, title dropped", l.Name))
	default:
		setText(draft.title, desc.Title)
		outcome.TitleStatus = entities.FieldApplied
	}

	body := draft.body
	switch {
	case body == nil:
		body = draft.addTextBox()
		outcome.BodyStatus = entities.FieldDegraded
		outcome.Detail = append(outcome.Detail, fmt.Sprintf("layout %q has no body placeholder, content placed in a text box", l.Name))
	case len(desc.Content) == 0:
		outcome.BodyStatus = entities.FieldSkipped
	default:
		outcome.BodyStatus = entities.FieldApplied
	}
	setParagraphs(body, desc.Content)

	rels := &relationships{source: part}
	rels.add(relSlideLayout, l.Part)

	if desc.HasNotes() {
		notesMaster, err := p.notesMaster()
		if err != nil {
			outcome.NotesStatus = entities.FieldDegraded
			outcome.Detail = append(outcome.Detail, fmt.Sprintf("creating notes master: %v, notes dropped", err))
		} else {
			notesPart := p.nextPartName("ppt/notesSlides/notesSlide", ".xml")
			if err := p.writeNotes(notesPart, part, notesMaster, desc.Notes); err != nil {
				return outcome, err
			}
			rels.add(relNotesSlide, notesPart)
			outcome.NotesStatus = entities.FieldApplied
		}
	} else {
		outcome.NotesStatus = entities.FieldSkipped
	}

	data, err := render(newPart(draft.root))
	if err != nil {
		return outcome, err
	}
	p.pkg.SetPart(part, data)
	if err := p.pkg.writeRels(rels); err != nil {
		return outcome, err
	}
	p.types.setOverride(part, ctSlide)
	p.addSlide(part)

	return outcome, nil
}
