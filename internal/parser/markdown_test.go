package parser

import (
	"strings"
	"testing"

	"github.com/cguess/prepcook/internal/doctree"
	"github.com/cguess/prepcook/internal/synonyms"
)

// flatten renders paragraphs as "STYLE|text" with trailing whitespace
// removed, and other elements by kind.
func flatten(doc *doctree.Document) []string {
	var out []string
	for _, e := range doc.Elements {
		if e.Kind != doctree.KindParagraph {
			out = append(out, e.Kind.String())
			continue
		}
		out = append(out, e.Paragraph.Style+"|"+strings.TrimRight(e.Paragraph.Text(), " \n"))
	}
	return out
}

func assertFlat(t *testing.T, doc *doctree.Document, want []string) {
	t.Helper()
	got := flatten(doc)
	if len(got) != len(want) {
		t.Fatalf("expected %d elements, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestMarkdownParser_SynonymDocument(t *testing.T) {
	input := `# Kitchen synonyms

Edit below the line.

-----

## dog

puppy, hound
canine

## cat

- kitten
- feline
`
	p := &MarkdownParser{Divider: "-----"}
	doc, err := p.Parse(strings.NewReader(input), "kitchen.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "kitchen" {
		t.Errorf("expected title %q, got %q", "kitchen", doc.Title)
	}

	assertFlat(t, doc, []string{
		"NORMAL_TEXT|# Kitchen synonyms",
		"NORMAL_TEXT|Edit below the line.",
		"NORMAL_TEXT|-----",
		"HEADING_2|dog",
		"NORMAL_TEXT|puppy, hound",
		"NORMAL_TEXT|canine",
		"HEADING_2|cat",
		"NORMAL_TEXT|kitten",
		"NORMAL_TEXT|feline",
	})
}

func TestMarkdownParser_ScansEndToEnd(t *testing.T) {
	input := "preamble\n\n-----\n\n## dog\n\npuppy, hound\n# not a synonym\n\n### big\n\n## cat\n\nkitten\n"
	p := &MarkdownParser{Divider: synonyms.DefaultDivider}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := synonyms.Scan(doc.Elements)
	dog, ok := res.Get("dog")
	if !ok {
		t.Fatalf("expected headword %q in %q", "dog", res.Headwords())
	}
	// A HEADING_3 paragraph is an ordinary synonym line under "dog".
	if strings.Join(dog, ",") != "big" {
		t.Errorf("expected dog synonyms %q, got %q", "big", dog)
	}
	cat, _ := res.Get("cat")
	if strings.Join(cat, ",") != "kitten" {
		t.Errorf("expected cat synonyms %q, got %q", "kitten", cat)
	}
}

func TestMarkdownParser_CustomDivider(t *testing.T) {
	p := &MarkdownParser{Divider: "=== start ==="}
	doc, err := p.Parse(strings.NewReader("intro\n\n***\n\n## dog\n"), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertFlat(t, doc, []string{
		"NORMAL_TEXT|intro",
		"NORMAL_TEXT|=== start ===",
		"HEADING_2|dog",
	})
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Elements) != 0 {
		t.Errorf("expected 0 elements for empty input, got %d", len(doc.Elements))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
		{"dir/plain.md", "plain"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		doc, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		if doc.Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, doc.Title)
		}
	}
}
