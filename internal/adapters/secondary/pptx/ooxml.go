package pptx

// Namespaces used by presentation parts
const (
	nsPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// knownPrefixes maps the prefixes used in generated parts to their namespaces
var knownPrefixes = map[string]string{
	"p": nsPresentation,
	"a": nsDrawing,
	"r": nsRelationships,
}

// Relationship types
const (
	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relSlideLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relSlideMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relNotesSlide     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relNotesMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	relTheme          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
)

// Content types
const (
	ctPresentationMain = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctTemplateMain     = "application/vnd.openxmlformats-officedocument.presentationml.template.main+xml"
	ctSlide            = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctNotesSlide       = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctNotesMaster      = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ctTheme            = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctRelationships    = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML              = "application/xml"
)

// Geometry of the fallback body text box, in EMU
const (
	emuPerInch     = 914400
	textBoxLeft    = 1 * emuPerInch
	textBoxTop     = emuPerInch * 3 / 2
	textBoxWidth   = 8 * emuPerInch
	textBoxHeight  = 4 * emuPerInch
	minimumSlideID = 256
)
