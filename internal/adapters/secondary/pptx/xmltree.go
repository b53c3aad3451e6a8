package pptx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// writeSettings escapes text and attribute values the way Office writes
// them: &, < and > in text; &, <, " and whitespace controls in attributes
var writeSettings = etree.WriteSettings{
	CanonicalText:    true,
	CanonicalAttrVal: true,
}

// parseXML reads a part. Prefixes, declarations and unknown markup are kept
// as written so the part can be edited and stored again.
func parseXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.WriteSettings = writeSettings
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parsing xml: no root element")
	}
	return doc, nil
}

// newPart wraps a generated root element in a document with the standalone
// declaration
func newPart(root *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings = writeSettings
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.CreateText("\n")
	doc.SetRoot(root)
	return doc
}

func render(doc *etree.Document) ([]byte, error) {
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("encoding xml: %w", err)
	}
	return data, nil
}

// namespaceOf resolves prefix through the xmlns declarations in scope at e.
// Detached generated elements fall back to the fixed prefixes.
func namespaceOf(e *etree.Element, prefix string) string {
	for cur := e; cur != nil; cur = cur.Parent() {
		for _, a := range cur.Attr {
			if prefix == "" && a.Space == "" && a.Key == "xmlns" {
				return a.Value
			}
			if prefix != "" && a.Space == "xmlns" && a.Key == prefix {
				return a.Value
			}
		}
	}
	return knownPrefixes[prefix]
}

// is reports whether e is the element space:local
func is(e *etree.Element, space, local string) bool {
	return e != nil && e.Tag == local && namespaceOf(e, e.Space) == space
}

// child returns the first child element space:local
func child(e *etree.Element, space, local string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if is(c, space, local) {
			return c
		}
	}
	return nil
}

// children returns every child element space:local
func children(e *etree.Element, space, local string) []*etree.Element {
	if e == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if is(c, space, local) {
			out = append(out, c)
		}
	}
	return out
}

// elements returns the child elements of e
func elements(e *etree.Element) []*etree.Element {
	if e == nil {
		return nil
	}
	return e.ChildElements()
}

// descend follows a chain of child elements in one namespace
func descend(e *etree.Element, space string, locals ...string) *etree.Element {
	cur := e
	for _, local := range locals {
		cur = child(cur, space, local)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// attrValue returns an attribute value or "". An empty space matches
// unqualified attributes only.
func attrValue(e *etree.Element, space, local string) string {
	if e == nil {
		return ""
	}
	for _, a := range e.Attr {
		if a.Key != local || a.Space == "xmlns" {
			continue
		}
		if space == "" && a.Space == "" {
			return a.Value
		}
		if space != "" && a.Space != "" && namespaceOf(e, a.Space) == space {
			return a.Value
		}
	}
	return ""
}

// prefixFor returns the prefix root binds to space, declaring preferred (or
// a numbered variant of it) when the namespace is not bound yet
func prefixFor(root *etree.Element, space, preferred string) string {
	for _, a := range root.Attr {
		switch {
		case a.Space == "xmlns" && a.Value == space:
			return a.Key
		case a.Space == "" && a.Key == "xmlns" && a.Value == space:
			return ""
		}
	}

	prefix := preferred
	for i := 1; root.SelectAttr("xmlns:"+prefix) != nil; i++ {
		prefix = fmt.Sprintf("%s%d", preferred, i)
	}
	root.CreateAttr("xmlns:"+prefix, space)
	return prefix
}

// qualify joins a prefix and a local name
func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// el builds a detached element from a prefixed tag and alternating
// attribute name/value pairs
func el(tag string, attrs ...string) *etree.Element {
	e := etree.NewElement(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		e.CreateAttr(attrs[i], attrs[i+1])
	}
	return e
}

// add appends children to parent and returns parent
func add(parent *etree.Element, kids ...*etree.Element) *etree.Element {
	for _, k := range kids {
		parent.AddChild(k)
	}
	return parent
}

// textElement builds a:t-style leaves. Code points XML 1.0 cannot carry,
// such as stray control characters in model output, are dropped.
func textElement(tag, text string) *etree.Element {
	e := etree.NewElement(tag)
	e.SetText(strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, text))
	return e
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
