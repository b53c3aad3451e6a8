package builders

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctBase  = "application/vnd.openxmlformats-officedocument."
)

// PlaceholderSpec is one placeholder shape of a layout
type PlaceholderSpec struct {
	Type string // empty means obj
	Idx  int
	Name string
}

// LayoutSpec is one slide layout of the generated master
type LayoutSpec struct {
	Name         string
	Placeholders []PlaceholderSpec
}

// TemplateBuilder assembles minimal but well-formed .pptx templates in memory
type TemplateBuilder struct {
	layouts        []LayoutSpec
	originals      int
	notesMaster    bool
	originalNotes  bool
	omitSlideList  bool
	templateMain   bool
	extraMediaPart bool
}

// NewTemplateBuilder starts from a two-layout template with one original
// slide and a notes master. Layout 0 has only a title; layout 1 has a title
// and a body.
func NewTemplateBuilder() *TemplateBuilder {
	return &TemplateBuilder{
		layouts: []LayoutSpec{
			{Name: "Title Only", Placeholders: []PlaceholderSpec{{Type: "title", Name: "Title 1"}}},
			{Name: "Title and Content", Placeholders: []PlaceholderSpec{
				{Type: "title", Name: "Title 1"},
				{Idx: 1, Name: "Content Placeholder 2"},
				{Type: "dt", Idx: 10, Name: "Date Placeholder 3"},
				{Type: "ftr", Idx: 11, Name: "Footer Placeholder 4"},
				{Type: "sldNum", Idx: 12, Name: "Slide Number Placeholder 5"},
			}},
		},
		originals:   1,
		notesMaster: true,
	}
}

// WithLayouts replaces every layout
func (b *TemplateBuilder) WithLayouts(layouts ...LayoutSpec) *TemplateBuilder {
	b.layouts = layouts
	return b
}

// WithOriginalSlides sets how many slides the template already holds
func (b *TemplateBuilder) WithOriginalSlides(n int) *TemplateBuilder {
	b.originals = n
	return b
}

// WithoutNotesMaster drops the notes master
func (b *TemplateBuilder) WithoutNotesMaster() *TemplateBuilder {
	b.notesMaster = false
	b.originalNotes = false
	return b
}

// WithOriginalNotes gives every original slide a notes slide
func (b *TemplateBuilder) WithOriginalNotes() *TemplateBuilder {
	b.notesMaster = true
	b.originalNotes = true
	return b
}

// WithoutSlideList omits p:sldIdLst from presentation.xml
func (b *TemplateBuilder) WithoutSlideList() *TemplateBuilder {
	b.omitSlideList = true
	b.originals = 0
	b.originalNotes = false
	return b
}

// AsTemplate registers the main part with the .potx content type
func (b *TemplateBuilder) AsTemplate() *TemplateBuilder {
	b.templateMain = true
	return b
}

// WithOriginalMedia attaches an image part used only by the first original slide
func (b *TemplateBuilder) WithOriginalMedia() *TemplateBuilder {
	b.extraMediaPart = true
	return b
}

// Build returns the .pptx bytes
func (b *TemplateBuilder) Build() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, part := range b.parts() {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildFile writes the template into dir and returns its path
func (b *TemplateBuilder) BuildFile(dir string) (string, error) {
	data, err := b.Build()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "template.pptx")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}

type templatePart struct {
	name string
	body string
}

func (b *TemplateBuilder) parts() []templatePart {
	const decl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	var parts []templatePart
	var overrides []string
	add := func(name, contentType, body string) {
		parts = append(parts, templatePart{name: name, body: decl + body})
		if contentType != "" {
			overrides = append(overrides, fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, name, contentType))
		}
	}

	mainType := ctBase + "presentationml.presentation.main+xml"
	if b.templateMain {
		mainType = ctBase + "presentationml.template.main+xml"
	}

	add("_rels/.rels", "", rels(rel("rId1", "officeDocument", "ppt/presentation.xml")))

	// presentation.xml and its relationships
	presRels := []string{
		rel("rId1", "slideMaster", "slideMasters/slideMaster1.xml"),
		rel("rId2", "theme", "theme/theme1.xml"),
	}
	next := 3
	notesMasterList := ""
	if b.notesMaster {
		id := fmt.Sprintf("rId%d", next)
		next++
		presRels = append(presRels, rel(id, "notesMaster", "notesMasters/notesMaster1.xml"))
		notesMasterList = fmt.Sprintf(`<p:notesMasterIdLst><p:notesMasterId r:id="%s"/></p:notesMasterIdLst>`, id)
	}
	var slideIDs []string
	for i := 1; i <= b.originals; i++ {
		id := fmt.Sprintf("rId%d", next)
		next++
		presRels = append(presRels, rel(id, "slide", fmt.Sprintf("slides/slide%d.xml", i)))
		slideIDs = append(slideIDs, fmt.Sprintf(`<p:sldId id="%d" r:id="%s"/>`, 255+i, id))
	}
	slideList := "<p:sldIdLst>" + strings.Join(slideIDs, "") + "</p:sldIdLst>"
	if b.omitSlideList {
		slideList = ""
	}
	add("ppt/presentation.xml", mainType, fmt.Sprintf(
		`<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">`+
			`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>%s%s`+
			`<p:sldSz cx="9144000" cy="6858000" type="screen4x3"/><p:notesSz cx="6858000" cy="9144000"/>`+
			`<p:defaultTextStyle/></p:presentation>`,
		nsA, nsR, nsP, notesMasterList, slideList))
	add("ppt/_rels/presentation.xml.rels", "", rels(presRels...))

	add("ppt/theme/theme1.xml", ctBase+"theme+xml",
		fmt.Sprintf(`<a:theme xmlns:a="%s" name="Test Theme"><a:themeElements/></a:theme>`, nsA))

	// master and layouts
	var layoutIDs []string
	masterRels := []string{}
	for i := range b.layouts {
		id := fmt.Sprintf("rId%d", i+1)
		masterRels = append(masterRels, rel(id, "slideLayout", fmt.Sprintf("../slideLayouts/slideLayout%d.xml", i+1)))
		layoutIDs = append(layoutIDs, fmt.Sprintf(`<p:sldLayoutId id="%d" r:id="%s"/>`, 2147483649+i, id))
	}
	masterRels = append(masterRels, rel(fmt.Sprintf("rId%d", len(b.layouts)+1), "theme", "../theme/theme1.xml"))
	add("ppt/slideMasters/slideMaster1.xml", ctBase+"presentationml.slideMaster+xml", fmt.Sprintf(
		`<p:sldMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld>%s</p:cSld>`+
			`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>`+
			`<p:sldLayoutIdLst>%s</p:sldLayoutIdLst></p:sldMaster>`,
		nsA, nsR, nsP, spTree(nil), strings.Join(layoutIDs, "")))
	add("ppt/slideMasters/_rels/slideMaster1.xml.rels", "", rels(masterRels...))

	for i, layout := range b.layouts {
		name := fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1)
		add(name, ctBase+"presentationml.slideLayout+xml", fmt.Sprintf(
			`<p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" preserve="1"><p:cSld name="%s">%s</p:cSld>`+
				`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`,
			nsA, nsR, nsP, layout.Name, spTree(layout.Placeholders)))
		add(fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1), "",
			rels(rel("rId1", "slideMaster", "../slideMasters/slideMaster1.xml")))
	}

	if b.notesMaster {
		add("ppt/notesMasters/notesMaster1.xml", ctBase+"presentationml.notesMaster+xml", fmt.Sprintf(
			`<p:notesMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld>%s</p:cSld>`+
				`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/></p:notesMaster>`,
			nsA, nsR, nsP, spTree([]PlaceholderSpec{{Type: "sldImg", Idx: 2}, {Type: "body", Idx: 3}})))
		add("ppt/notesMasters/_rels/notesMaster1.xml.rels", "", rels(rel("rId1", "theme", "../theme/theme1.xml")))
	}

	// original slides
	for i := 1; i <= b.originals; i++ {
		slideRels := []string{rel("rId1", "slideLayout", "../slideLayouts/slideLayout1.xml")}
		picture := ""
		if b.originalNotes {
			slideRels = append(slideRels, rel("rId2", "notesSlide", fmt.Sprintf("../notesSlides/notesSlide%d.xml", i)))
		}
		if b.extraMediaPart && i == 1 {
			slideRels = append(slideRels, rel("rId9", "image", "../media/image1.png"))
			picture = `<p:pic><p:nvPicPr><p:cNvPr id="9" name="Picture 8"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>` +
				`<p:blipFill><a:blip r:embed="rId9"/></p:blipFill><p:spPr/></p:pic>`
		}
		add(fmt.Sprintf("ppt/slides/slide%d.xml", i), ctBase+"presentationml.slide+xml", fmt.Sprintf(
			`<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>`+
				`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`+
				`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>`+
				`<p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:t>Original %d</a:t></a:r></a:p></p:txBody></p:sp>%s`+
				`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`,
			nsA, nsR, nsP, i, picture))
		add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i), "", rels(slideRels...))

		if b.originalNotes {
			add(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", i), ctBase+"presentationml.notesSlide+xml", fmt.Sprintf(
				`<p:notes xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld>%s</p:cSld></p:notes>`,
				nsA, nsR, nsP, spTree([]PlaceholderSpec{{Type: "body", Idx: 1}})))
			add(fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", i), "", rels(
				rel("rId1", "notesMaster", "../notesMasters/notesMaster1.xml"),
				rel("rId2", "slide", fmt.Sprintf("../slides/slide%d.xml", i)),
			))
		}
	}
	if b.extraMediaPart && b.originals > 0 {
		parts = append(parts, templatePart{name: "ppt/media/image1.png", body: "\x89PNG\r\n\x1a\n"})
	}

	types := templatePart{name: "[Content_Types].xml", body: decl + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		strings.Join(overrides, "") + `</Types>`}
	return append([]templatePart{types}, parts...)
}

func rel(id, relType, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relBase, relType, target)
}

func rels(items ...string) string {
	return fmt.Sprintf(`<Relationships xmlns="%s">%s</Relationships>`, nsRel, strings.Join(items, ""))
}

func spTree(placeholders []PlaceholderSpec) string {
	var b strings.Builder
	b.WriteString(`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)
	for i, ph := range placeholders {
		attrs := ""
		if ph.Type != "" {
			attrs += fmt.Sprintf(` type="%s"`, ph.Type)
		}
		if ph.Idx != 0 {
			attrs += fmt.Sprintf(` idx="%d"`, ph.Idx)
		}
		name := ph.Name
		if name == "" {
			name = fmt.Sprintf("Placeholder %d", i+1)
		}
		fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>`+
			`<p:nvPr><p:ph%s/></p:nvPr></p:nvSpPr>`+
			`<p:spPr><a:xfrm><a:off x="457200" y="%d"/><a:ext cx="8229600" cy="1143000"/></a:xfrm></p:spPr>`+
			`<p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody></p:sp>`,
			i+2, name, attrs, 274638+i*1200000)
	}
	b.WriteString(`</p:spTree>`)
	return b.String()
}
