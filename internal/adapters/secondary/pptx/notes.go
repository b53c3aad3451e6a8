package pptx

// writeNotes stores a notes slide for slidePart bound to the notes master
func (p *presentation) writeNotes(notesPart, slidePart, notesMaster, text string) error {
	body := emptyTextBody()
	setText(body, text)

	root := add(el("p:notes",
		"xmlns:a", nsDrawing,
		"xmlns:r", nsRelationships,
		"xmlns:p", nsPresentation,
	),
		add(el("p:cSld"),
			add(el("p:spTree"),
				add(el("p:nvGrpSpPr"),
					el("p:cNvPr", "id", "1", "name", ""),
					el("p:cNvGrpSpPr"),
					el("p:nvPr"),
				),
				el("p:grpSpPr"),
				add(el("p:sp"),
					add(el("p:nvSpPr"),
						el("p:cNvPr", "id", "2", "name", "Slide Image Placeholder 1"),
						add(el("p:cNvSpPr"), el("a:spLocks", "noGrp", "1", "noRot", "1", "noChangeAspect", "1")),
						add(el("p:nvPr"), el("p:ph", "type", "sldImg")),
					),
					el("p:spPr"),
				),
				add(el("p:sp"),
					add(el("p:nvSpPr"),
						el("p:cNvPr", "id", "3", "name", "Notes Placeholder 2"),
						add(el("p:cNvSpPr"), el("a:spLocks", "noGrp", "1")),
						add(el("p:nvPr"), el("p:ph", "type", "body", "idx", "1")),
					),
					el("p:spPr"),
					body,
				),
			),
		),
		add(el("p:clrMapOvr"), el("a:masterClrMapping")),
	)

	rels := &relationships{source: notesPart}
	rels.add(relNotesMaster, notesMaster)
	rels.add(relSlide, slidePart)

	data, err := render(newPart(root))
	if err != nil {
		return err
	}
	p.pkg.SetPart(notesPart, data)
	if err := p.pkg.writeRels(rels); err != nil {
		return err
	}
	p.types.setOverride(notesPart, ctNotesSlide)
	return nil
}
