package pptx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// presentation is an opened deck: its package plus the parsed main part
type presentation struct {
	pkg   *Package
	types *contentTypes
	part  string
	doc   *etree.Document
	root  *etree.Element
	rels  *relationships
}

// slideRef is one entry of the slide id list
type slideRef struct {
	entry *etree.Element
	id    uint64
	relID string
	part  string
}

func openPresentation(pkg *Package) (*presentation, error) {
	rootRels, err := pkg.readRels("")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidTemplate, err)
	}

	mainPart := "ppt/presentation.xml"
	if rel, ok := rootRels.byType(relOfficeDocument); ok {
		mainPart = rootRels.resolve(rel)
	}

	data, ok := pkg.Part(mainPart)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", entities.ErrInvalidTemplate, mainPart)
	}
	doc, err := parseXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrInvalidTemplate, mainPart, err)
	}
	if !is(doc.Root(), nsPresentation, "presentation") {
		return nil, fmt.Errorf("%w: %s is not a presentation part", entities.ErrInvalidTemplate, mainPart)
	}

	rels, err := pkg.readRels(mainPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidTemplate, err)
	}
	types, err := pkg.readContentTypes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidTemplate, err)
	}

	return &presentation{pkg: pkg, types: types, part: mainPart, doc: doc, root: doc.Root(), rels: rels}, nil
}

// slides lists the slide id entries in presentation order
func (p *presentation) slides() []slideRef {
	list := child(p.root, nsPresentation, "sldIdLst")
	var refs []slideRef
	for _, entry := range children(list, nsPresentation, "sldId") {
		ref := slideRef{entry: entry, relID: attrValue(entry, nsRelationships, "id")}
		ref.id, _ = strconv.ParseUint(attrValue(entry, "", "id"), 10, 32)
		if rel, ok := p.rels.byID(ref.relID); ok {
			ref.part = p.rels.resolve(rel)
		}
		refs = append(refs, ref)
	}
	return refs
}

// masterPart returns the first slide master
func (p *presentation) masterPart() (string, error) {
	entry := descend(p.root, nsPresentation, "sldMasterIdLst", "sldMasterId")
	if entry == nil {
		return "", fmt.Errorf("%w: no slide master", entities.ErrInvalidTemplate)
	}
	rel, ok := p.rels.byID(attrValue(entry, nsRelationships, "id"))
	if !ok {
		return "", fmt.Errorf("%w: slide master relationship is missing", entities.ErrInvalidTemplate)
	}
	part := p.rels.resolve(rel)
	if !p.pkg.Has(part) {
		return "", fmt.Errorf("%w: missing %s", entities.ErrInvalidTemplate, part)
	}
	return part, nil
}

// notesMasterPart returns the notes master or "" when the template has none
func (p *presentation) notesMasterPart() string {
	entry := descend(p.root, nsPresentation, "notesMasterIdLst", "notesMasterId")
	if entry != nil {
		if rel, ok := p.rels.byID(attrValue(entry, nsRelationships, "id")); ok {
			if part := p.rels.resolve(rel); p.pkg.Has(part) {
				return part
			}
		}
	}
	if rel, ok := p.rels.byType(relNotesMaster); ok {
		if part := p.rels.resolve(rel); p.pkg.Has(part) {
			return part
		}
	}
	return ""
}

// slideList returns p:sldIdLst, creating it after the master lists if absent
func (p *presentation) slideList() *etree.Element {
	if list := child(p.root, nsPresentation, "sldIdLst"); list != nil {
		return list
	}
	list := etree.NewElement(qualify(prefixFor(p.root, nsPresentation, "p"), "sldIdLst"))
	p.insertAfter(list, "sldMasterIdLst", "notesMasterIdLst", "handoutMasterIdLst")
	return list
}

// insertAfter places e right after the last child named by one of locals,
// or first when there is none. The presentation schema orders the master
// lists ahead of everything else.
func (p *presentation) insertAfter(e *etree.Element, locals ...string) {
	at := 0
	for _, c := range p.root.ChildElements() {
		for _, local := range locals {
			if is(c, nsPresentation, local) {
				at = c.Index() + 1
			}
		}
	}
	p.root.InsertChildAt(at, e)
}

// nextSlideID returns one more than the highest slide id, never below 256
func (p *presentation) nextSlideID() uint64 {
	highest := uint64(minimumSlideID - 1)
	for _, ref := range p.slides() {
		if ref.id > highest {
			highest = ref.id
		}
	}
	return highest + 1
}

// addSlide relates part to the presentation and appends it to the slide list
func (p *presentation) addSlide(part string) slideRef {
	relID := p.rels.add(relSlide, part)
	id := p.nextSlideID()
	list := p.slideList()

	entry := list.CreateElement(qualify(prefixFor(p.root, nsPresentation, "p"), "sldId"))
	entry.CreateAttr("id", strconv.FormatUint(id, 10))
	entry.CreateAttr(qualify(prefixFor(p.root, nsRelationships, "r"), "id"), relID)

	return slideRef{entry: entry, id: id, relID: relID, part: part}
}

// removeSlide drops a slide from the list and the presentation's
// relationships. Its part goes away on save once nothing references it.
func (p *presentation) removeSlide(ref slideRef) {
	if list := child(p.root, nsPresentation, "sldIdLst"); list != nil {
		list.RemoveChild(ref.entry)
	}
	if ref.relID != "" {
		p.rels.remove(ref.relID)
	}
}

// nextPartName returns prefix+N+ext with N above every existing number
func (p *presentation) nextPartName(prefix, ext string) string {
	highest := 0
	for _, name := range p.pkg.Names() {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext))
		if err == nil && n > highest {
			highest = n
		}
	}
	return prefix + strconv.Itoa(highest+1) + ext
}

// readPart parses an XML part
func (p *presentation) readPart(part string) (*etree.Document, error) {
	data, ok := p.pkg.Part(part)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", entities.ErrInvalidTemplate, part)
	}
	doc, err := parseXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entities.ErrInvalidTemplate, part, err)
	}
	return doc, nil
}

// save writes the main part, its relationships and content types, drops
// unreferenced parts and stores the package at outputPath
func (p *presentation) save(outputPath string) error {
	if ct, ok := p.types.override(p.part); !ok || ct == ctTemplateMain {
		p.types.setOverride(p.part, ctPresentationMain)
	}
	p.types.ensureDefault("rels", ctRelationships)
	p.types.ensureDefault("xml", ctXML)

	data, err := render(p.doc)
	if err != nil {
		return err
	}
	p.pkg.SetPart(p.part, data)
	if err := p.pkg.writeRels(p.rels); err != nil {
		return err
	}
	if err := p.pkg.prune(p.types); err != nil {
		return fmt.Errorf("pruning package: %w", err)
	}
	if err := p.pkg.writeContentTypes(p.types); err != nil {
		return err
	}
	return p.pkg.Save(outputPath)
}
