package gdocs

import (
	"github.com/cguess/prepcook/internal/doctree"
	docs "google.golang.org/api/docs/v1"
)

// Convert maps a Docs API document onto the internal tree. Only the
// top-level body is walked; table cells are not descended into.
func Convert(doc *docs.Document) *doctree.Document {
	out := &doctree.Document{}
	if doc == nil {
		return out
	}
	out.ID = doc.DocumentId
	out.Title = doc.Title
	if doc.Body == nil {
		return out
	}

	for _, se := range doc.Body.Content {
		if se == nil {
			continue
		}
		out.Elements = append(out.Elements, convertElement(se))
	}
	return out
}

func convertElement(se *docs.StructuralElement) *doctree.Element {
	switch {
	case se.Paragraph != nil:
		return &doctree.Element{Kind: doctree.KindParagraph, Paragraph: convertParagraph(se.Paragraph)}
	case se.Table != nil:
		return &doctree.Element{Kind: doctree.KindTable}
	case se.SectionBreak != nil:
		return &doctree.Element{Kind: doctree.KindSectionBreak}
	case se.TableOfContents != nil:
		return &doctree.Element{Kind: doctree.KindTableOfContents}
	}
	return &doctree.Element{Kind: doctree.KindOther}
}

func convertParagraph(p *docs.Paragraph) *doctree.Paragraph {
	para := &doctree.Paragraph{}
	if p.ParagraphStyle != nil {
		para.Style = p.ParagraphStyle.NamedStyleType
	}
	// Inline objects, page breaks, person chips and the like carry no text
	// and are dropped.
	for _, el := range p.Elements {
		if el == nil || el.TextRun == nil {
			continue
		}
		para.Runs = append(para.Runs, doctree.Run{Content: el.TextRun.Content})
	}
	return para
}
