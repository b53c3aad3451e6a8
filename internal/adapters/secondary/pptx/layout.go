package pptx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// placeholder describes one p:ph shape of a layout
type placeholder struct {
	Type   string
	Idx    string
	Orient string
	Size   string
	Name   string
}

// cloneable reports whether new slides inherit the placeholder. Date, footer
// and slide number placeholders stay on the layout.
func (ph placeholder) cloneable() bool {
	switch ph.Type {
	case "dt", "ftr", "sldNum":
		return false
	}
	return true
}

// textual reports whether a cloned placeholder gets a text body
func (ph placeholder) textual() bool {
	switch ph.Type {
	case "title", "ctrTitle", "subTitle", "body", "obj":
		return true
	}
	return false
}

func (ph placeholder) isTitle() bool {
	return ph.Type == "title" || ph.Type == "ctrTitle"
}

func (ph placeholder) describe() string {
	desc := fmt.Sprintf("%s #%s", ph.Type, ph.Idx)
	if ph.Name != "" {
		desc += fmt.Sprintf(" (%s)", ph.Name)
	}
	return desc
}

// layout is a slide layout of the first master
type layout struct {
	Index        int
	Part         string
	Name         string
	Placeholders []placeholder
}

// layouts returns the first master's layouts in sldLayoutIdLst order
func (p *presentation) layouts() ([]*layout, error) {
	masterPart, err := p.masterPart()
	if err != nil {
		return nil, err
	}
	master, err := p.readPart(masterPart)
	if err != nil {
		return nil, err
	}
	masterRels, err := p.pkg.readRels(masterPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidTemplate, err)
	}

	var out []*layout
	for _, entry := range children(child(master.Root(), nsPresentation, "sldLayoutIdLst"), nsPresentation, "sldLayoutId") {
		rel, ok := masterRels.byID(attrValue(entry, nsRelationships, "id"))
		if !ok || rel.Type != relSlideLayout {
			continue
		}
		part := masterRels.resolve(rel)
		doc, err := p.readPart(part)
		if err != nil {
			return nil, err
		}
		out = append(out, parseLayout(len(out), part, doc.Root()))
	}
	return out, nil
}

func parseLayout(index int, part string, root *etree.Element) *layout {
	cSld := child(root, nsPresentation, "cSld")
	l := &layout{
		Index: index,
		Part:  part,
		Name:  attrValue(cSld, "", "name"),
	}
	for _, shape := range elements(child(cSld, nsPresentation, "spTree")) {
		if ph, ok := shapePlaceholder(shape); ok {
			l.Placeholders = append(l.Placeholders, ph)
		}
	}
	return l
}

// shapePlaceholder reads the p:ph of a shape's non-visual properties
func shapePlaceholder(shape *etree.Element) (placeholder, bool) {
	for _, nv := range elements(shape) {
		if namespaceOf(nv, nv.Space) != nsPresentation || !strings.HasPrefix(nv.Tag, "nv") || !strings.HasSuffix(nv.Tag, "Pr") {
			continue
		}
		ph := descend(nv, nsPresentation, "nvPr", "ph")
		if ph == nil {
			continue
		}
		out := placeholder{
			Type:   attrValue(ph, "", "type"),
			Idx:    attrValue(ph, "", "idx"),
			Orient: attrValue(ph, "", "orient"),
			Size:   attrValue(ph, "", "sz"),
			Name:   attrValue(child(nv, nsPresentation, "cNvPr"), "", "name"),
		}
		if out.Type == "" {
			out.Type = "obj"
		}
		if out.Idx == "" {
			out.Idx = "0"
		}
		return out, true
	}
	return placeholder{}, false
}

// chooseLayout prefers the first layout with two or more placeholders
func chooseLayout(layouts []*layout) *layout {
	for _, l := range layouts {
		if len(l.Placeholders) >= 2 {
			return l
		}
	}
	return layouts[0]
}

func (l *layout) info() entities.LayoutInfo {
	info := entities.LayoutInfo{Index: l.Index, Name: l.Name, Placeholders: make([]string, 0, len(l.Placeholders))}
	for _, ph := range l.Placeholders {
		info.Placeholders = append(info.Placeholders, ph.describe())
	}
	return info
}
