package parser

import (
	"fmt"
	"io"

	"github.com/cguess/prepcook/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
//
// Level-2 headings become headword paragraphs. A level-1 heading is what a
// "# comment" line parses as, so it is turned back into that comment line.
// Every source line of a text block becomes its own paragraph, matching how
// one synonym list per line is typed in the document.
type MarkdownParser struct {
	Divider string
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &doctree.Document{Title: titleFromFilename(filename)}
	p.walk(root, src, doc)
	return doc, nil
}

func (p *MarkdownParser) walk(n ast.Node, src []byte, doc *doctree.Document) {
	switch node := n.(type) {
	case *ast.Heading:
		title := joinLines(node, src)
		if node.Level == 1 {
			doc.Elements = append(doc.Elements, doctree.NewParagraph(doctree.StyleNormal, "# "+title))
		} else {
			doc.Elements = append(doc.Elements, doctree.NewParagraph(headingStyle(node.Level), title))
		}
		return
	case *ast.ThematicBreak:
		doc.Elements = append(doc.Elements, doctree.NewParagraph(doctree.StyleNormal, p.Divider))
		return
	}

	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			doc.Elements = append(doc.Elements, doctree.NewParagraph(doctree.StyleNormal, string(seg.Value(src))))
		}
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		p.walk(c, src, doc)
	}
}

// joinLines returns the raw source text of a block node.
func joinLines(n ast.Node, src []byte) string {
	var buf []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf = append(buf, seg.Value(src)...)
	}
	return string(buf)
}

func headingStyle(level int) string {
	switch level {
	case 1:
		return doctree.StyleHeading1
	case 2:
		return doctree.StyleHeading2
	case 3:
		return doctree.StyleHeading3
	case 4:
		return doctree.StyleHeading4
	case 5:
		return doctree.StyleHeading5
	case 6:
		return doctree.StyleHeading6
	}
	return doctree.StyleNormal
}
