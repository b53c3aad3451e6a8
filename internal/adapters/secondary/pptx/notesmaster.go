package pptx

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// notesMaster returns the notes master notes slides bind to. A template
// without one gets a default master with its own theme the first time a
// slide carries notes.
func (p *presentation) notesMaster() (string, error) {
	if part := p.notesMasterPart(); part != "" {
		return part, nil
	}
	return p.createNotesMaster()
}

func (p *presentation) createNotesMaster() (string, error) {
	themePart := p.nextPartName("ppt/theme/theme", ".xml")
	masterPart := p.nextPartName("ppt/notesMasters/notesMaster", ".xml")
	masterData, err := render(newPart(defaultNotesMaster()))
	if err != nil {
		return "", fmt.Errorf("building notes master: %w", err)
	}

	masterRels := &relationships{source: masterPart}
	masterRels.add(relTheme, themePart)

	p.pkg.SetPart(themePart, []byte(defaultTheme))
	p.pkg.SetPart(masterPart, masterData)
	if err := p.pkg.writeRels(masterRels); err != nil {
		return "", err
	}
	p.types.setOverride(themePart, ctTheme)
	p.types.setOverride(masterPart, ctNotesMaster)

	relID := p.rels.add(relNotesMaster, masterPart)
	list := child(p.root, nsPresentation, "notesMasterIdLst")
	if list == nil {
		list = etree.NewElement(qualify(prefixFor(p.root, nsPresentation, "p"), "notesMasterIdLst"))
		p.insertAfter(list, "sldMasterIdLst")
	}
	for _, stale := range elements(list) {
		list.RemoveChild(stale)
	}
	entry := list.CreateElement(qualify(prefixFor(p.root, nsPresentation, "p"), "notesMasterId"))
	entry.CreateAttr(qualify(prefixFor(p.root, nsRelationships, "r"), "id"), relID)

	return masterPart, nil
}

// defaultNotesMaster lays out a portrait notes page with the slide image on
// top and the notes body below it
func defaultNotesMaster() *etree.Element {
	return add(el("p:notesMaster",
		"xmlns:a", nsDrawing,
		"xmlns:r", nsRelationships,
		"xmlns:p", nsPresentation,
	),
		add(el("p:cSld"),
			add(el("p:bg"),
				add(el("p:bgRef", "idx", "1001"), el("a:schemeClr", "val", "bg1")),
			),
			add(el("p:spTree"),
				add(el("p:nvGrpSpPr"),
					el("p:cNvPr", "id", "1", "name", ""),
					el("p:cNvGrpSpPr"),
					el("p:nvPr"),
				),
				el("p:grpSpPr"),
				notesMasterShape(2, "Slide Image Placeholder 1",
					el("p:ph", "type", "sldImg", "idx", "2"),
					1143000, 685800, 4572000, 3429000, false),
				notesMasterShape(3, "Notes Placeholder 2",
					el("p:ph", "type", "body", "sz", "quarter", "idx", "3"),
					685800, 4343400, 5486400, 4114800, true),
			),
		),
		el("p:clrMap",
			"bg1", "lt1", "tx1", "dk1", "bg2", "lt2", "tx2", "dk2",
			"accent1", "accent1", "accent2", "accent2", "accent3", "accent3",
			"accent4", "accent4", "accent5", "accent5", "accent6", "accent6",
			"hlink", "hlink", "folHlink", "folHlink",
		),
	)
}

func notesMasterShape(id int, name string, ph *etree.Element, x, y, cx, cy int, text bool) *etree.Element {
	sp := add(el("p:sp"),
		add(el("p:nvSpPr"),
			el("p:cNvPr", "id", strconv.Itoa(id), "name", name),
			add(el("p:cNvSpPr"), el("a:spLocks", "noGrp", "1")),
			add(el("p:nvPr"), ph),
		),
		add(el("p:spPr"),
			add(el("a:xfrm"),
				el("a:off", "x", strconv.Itoa(x), "y", strconv.Itoa(y)),
				el("a:ext", "cx", strconv.Itoa(cx), "cy", strconv.Itoa(cy)),
			),
			add(el("a:prstGeom", "prst", "rect"), el("a:avLst")),
		),
	)
	if text {
		add(sp, emptyTextBody())
	}
	return sp
}

// defaultTheme is the smallest theme Office accepts: a full color scheme,
// one font pair and three entries in every format style list
const defaultTheme = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements><a:clrScheme name="Office"><a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1><a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1><a:dk2><a:srgbClr val="44546A"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2><a:accent1><a:srgbClr val="4472C4"/></a:accent1><a:accent2><a:srgbClr val="ED7D31"/></a:accent2><a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4><a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6><a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink></a:clrScheme><a:fontScheme name="Office"><a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont><a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont></a:fontScheme><a:fmtScheme name="Office"><a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst><a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst><a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst><a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst></a:fmtScheme></a:themeElements><a:objectDefaults/><a:extraClrSchemeLst/></a:theme>`
