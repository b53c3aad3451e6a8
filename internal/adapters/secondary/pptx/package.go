package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
)

const (
	contentTypesPart = "[Content_Types].xml"
	rootRelsPart     = "_rels/.rels"

	// maxPartBytes bounds a single decompressed part
	maxPartBytes = 256 << 20
)

// Package is an Open Packaging Conventions zip held in memory. Part names
// carry no leading slash.
type Package struct {
	order []string
	parts map[string][]byte
}

// OpenPackage reads every part of the zip at path
func OpenPackage(filePath string) (*Package, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}
	defer func() { _ = r.Close() }()

	pkg := &Package{parts: make(map[string][]byte, len(r.File))}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		pkg.SetPart(strings.TrimPrefix(f.Name, "/"), data)
	}
	return pkg, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading part %s: %w", f.Name, err)
	}
	if len(data) > maxPartBytes {
		return nil, fmt.Errorf("part %s exceeds %d bytes", f.Name, maxPartBytes)
	}
	return data, nil
}

// Part returns the bytes of a part
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// Has reports whether the part exists
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// SetPart creates or replaces a part
func (p *Package) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// DeletePart removes a part if present
func (p *Package) DeletePart(name string) {
	if _, ok := p.parts[name]; !ok {
		return
	}
	delete(p.parts, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Names returns the part names in archive order
func (p *Package) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// WriteTo writes the package as a zip. [Content_Types].xml goes first.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	counter := &countingWriter{w: w}
	zw := zip.NewWriter(counter)

	names := p.Names()
	sort.SliceStable(names, func(i, j int) bool {
		return names[i] == contentTypesPart && names[j] != contentTypesPart
	})

	for _, name := range names {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return counter.n, fmt.Errorf("writing part %s: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return counter.n, fmt.Errorf("writing part %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return counter.n, fmt.Errorf("closing package: %w", err)
	}
	return counter.n, nil
}

// Save writes the package to path
func (p *Package) Save(filePath string) error {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("saving package: %w", err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// relationship is one entry of a .rels part
type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func (r relationship) external() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// relationships is the content of a .rels part along with its owner
type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Items   []relationship `xml:"Relationship"`

	source string
}

// relsPartName returns the .rels part that belongs to source
func relsPartName(source string) string {
	if source == "" {
		return rootRelsPart
	}
	return path.Join(path.Dir(source), "_rels", path.Base(source)+".rels")
}

// readRels loads the relationships of source. A missing .rels part yields
// an empty set.
func (p *Package) readRels(source string) (*relationships, error) {
	rels := &relationships{source: source}
	data, ok := p.Part(relsPartName(source))
	if !ok {
		return rels, nil
	}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", relsPartName(source), err)
	}
	rels.source = source
	return rels, nil
}

// writeRels stores the relationships back into the package
func (p *Package) writeRels(rels *relationships) error {
	data, err := xml.Marshal(rels)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", relsPartName(rels.source), err)
	}
	p.SetPart(relsPartName(rels.source), append([]byte(xmlDeclaration), data...))
	return nil
}

// byID returns the relationship with the given id
func (r *relationships) byID(id string) (relationship, bool) {
	for _, rel := range r.Items {
		if rel.ID == id {
			return rel, true
		}
	}
	return relationship{}, false
}

// byType returns the first relationship of a type
func (r *relationships) byType(relType string) (relationship, bool) {
	for _, rel := range r.Items {
		if rel.Type == relType {
			return rel, true
		}
	}
	return relationship{}, false
}

// resolve returns the part name a relationship points to
func (r *relationships) resolve(rel relationship) string {
	return resolveTarget(r.source, rel.Target)
}

// add appends a relationship to target and returns its new id
func (r *relationships) add(relType, targetPart string) string {
	id := r.nextID()
	r.Items = append(r.Items, relationship{
		ID:     id,
		Type:   relType,
		Target: relativeTarget(r.source, targetPart),
	})
	return id
}

// remove drops the relationship with the given id
func (r *relationships) remove(id string) bool {
	for i, rel := range r.Items {
		if rel.ID == id {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return true
		}
	}
	return false
}

// nextID returns rId(N+1) where N is the highest numbered rId in use
func (r *relationships) nextID() string {
	highest := 0
	for _, rel := range r.Items {
		if !strings.HasPrefix(rel.ID, "rId") {
			continue
		}
		if n, err := strconv.Atoi(rel.ID[3:]); err == nil && n > highest {
			highest = n
		}
	}
	return "rId" + strconv.Itoa(highest+1)
}

// resolveTarget turns a relationship target into a part name
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(source), target), "/")
}

// relativeTarget expresses part relative to the directory of source
func relativeTarget(source, part string) string {
	fromDir := path.Dir(source)
	if fromDir == "." {
		return part
	}

	from := strings.Split(fromDir, "/")
	to := strings.Split(part, "/")
	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	var parts []string
	for i := common; i < len(from); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	return strings.Join(parts, "/")
}

// contentTypes is the [Content_Types].xml part
type contentTypes struct {
	XMLName   xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []defaultType  `xml:"Default"`
	Overrides []overrideType `xml:"Override"`
}

type defaultType struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideType struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func (p *Package) readContentTypes() (*contentTypes, error) {
	data, ok := p.Part(contentTypesPart)
	if !ok {
		return nil, fmt.Errorf("missing %s", contentTypesPart)
	}
	types := &contentTypes{}
	if err := xml.Unmarshal(data, types); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", contentTypesPart, err)
	}
	return types, nil
}

func (p *Package) writeContentTypes(types *contentTypes) error {
	data, err := xml.Marshal(types)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", contentTypesPart, err)
	}
	p.SetPart(contentTypesPart, append([]byte(xmlDeclaration), data...))
	return nil
}

// override returns the content type registered for a part
func (c *contentTypes) override(part string) (string, bool) {
	name := "/" + part
	for _, o := range c.Overrides {
		if strings.EqualFold(o.PartName, name) {
			return o.ContentType, true
		}
	}
	return "", false
}

// setOverride registers or replaces the content type of a part
func (c *contentTypes) setOverride(part, contentType string) {
	name := "/" + part
	for i, o := range c.Overrides {
		if strings.EqualFold(o.PartName, name) {
			c.Overrides[i].ContentType = contentType
			return
		}
	}
	c.Overrides = append(c.Overrides, overrideType{PartName: name, ContentType: contentType})
}

// ensureDefault registers an extension default if it is missing
func (c *contentTypes) ensureDefault(ext, contentType string) {
	for _, d := range c.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return
		}
	}
	c.Defaults = append(c.Defaults, defaultType{Extension: ext, ContentType: contentType})
}

// retain drops overrides for parts that fail keep
func (c *contentTypes) retain(keep func(part string) bool) {
	kept := c.Overrides[:0]
	for _, o := range c.Overrides {
		if keep(strings.TrimPrefix(o.PartName, "/")) {
			kept = append(kept, o)
		}
	}
	c.Overrides = kept
}

// relsSource returns the part a .rels part belongs to
func relsSource(name string) (string, bool) {
	if name == rootRelsPart {
		return "", true
	}
	dir, file := path.Split(name)
	if !strings.HasSuffix(file, ".rels") || path.Base(strings.TrimSuffix(dir, "/")) != "_rels" {
		return "", false
	}
	owner := path.Dir(strings.TrimSuffix(dir, "/"))
	source := strings.TrimSuffix(file, ".rels")
	if owner == "." {
		return source, true
	}
	return owner + "/" + source, true
}

// reachable walks relationships from the package root and returns every
// internal part that is still referenced
func (p *Package) reachable() (map[string]bool, error) {
	seen := make(map[string]bool)
	var visit func(source string) error
	visit = func(source string) error {
		rels, err := p.readRels(source)
		if err != nil {
			return err
		}
		for _, rel := range rels.Items {
			if rel.external() {
				continue
			}
			target := rels.resolve(rel)
			if seen[target] || !p.Has(target) {
				continue
			}
			seen[target] = true
			if err := visit(target); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(""); err != nil {
		return nil, err
	}
	return seen, nil
}

// prune drops parts no relationship reaches, their .rels parts and their
// content-type overrides
func (p *Package) prune(types *contentTypes) error {
	live, err := p.reachable()
	if err != nil {
		return err
	}

	keep := func(name string) bool {
		if name == contentTypesPart || live[name] {
			return true
		}
		if source, ok := relsSource(name); ok {
			return source == "" || live[source]
		}
		return false
	}

	for _, name := range p.Names() {
		if !keep(name) {
			p.DeletePart(name)
		}
	}
	types.retain(func(part string) bool { return p.Has(part) })
	return nil
}
