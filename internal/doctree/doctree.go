package doctree

// Named paragraph styles, using the Docs API spelling.
const (
	StyleNormal   = "NORMAL_TEXT"
	StyleTitle    = "TITLE"
	StyleHeading1 = "HEADING_1"
	StyleHeading2 = "HEADING_2"
	StyleHeading3 = "HEADING_3"
	StyleHeading4 = "HEADING_4"
	StyleHeading5 = "HEADING_5"
	StyleHeading6 = "HEADING_6"
)

// ElementKind tags a structural element.
type ElementKind int

const (
	KindParagraph ElementKind = iota
	KindTable
	KindSectionBreak
	KindTableOfContents
	KindOther
)

func (k ElementKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindSectionBreak:
		return "section_break"
	case KindTableOfContents:
		return "table_of_contents"
	}
	return "other"
}

// Document is a fetched or parsed source document.
type Document struct {
	ID       string     // Source document ID (empty for local files)
	Title    string     // Document title (from metadata or filename)
	Elements []*Element // Body content in document order
}

// Element is one block-level node of the document body.
type Element struct {
	Kind      ElementKind
	Paragraph *Paragraph // Set only when Kind == KindParagraph
}

// Paragraph is a styled line of text made of runs.
type Paragraph struct {
	Style string // Named style, e.g. StyleHeading2
	Runs  []Run
}

// Run is a contiguous span of text with uniform styling.
type Run struct {
	Content string
}

// NewParagraph builds a paragraph element from raw run contents.
func NewParagraph(style string, runs ...string) *Element {
	p := &Paragraph{Style: style}
	for _, r := range runs {
		p.Runs = append(p.Runs, Run{Content: r})
	}
	return &Element{Kind: KindParagraph, Paragraph: p}
}

// Text returns the concatenated raw content of all runs.
func (p *Paragraph) Text() string {
	if p == nil {
		return ""
	}
	var n int
	for _, r := range p.Runs {
		n += len(r.Content)
	}
	buf := make([]byte, 0, n)
	for _, r := range p.Runs {
		buf = append(buf, r.Content...)
	}
	return string(buf)
}

// Paragraphs counts paragraph elements.
func (d *Document) Paragraphs() int {
	n := 0
	for _, e := range d.Elements {
		if e.Kind == KindParagraph {
			n++
		}
	}
	return n
}
