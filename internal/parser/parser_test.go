package parser

import (
	"fmt"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantType string
	}{
		{"doc.json", "*parser.JSONParser"},
		{"doc.MD", "*parser.MarkdownParser"},
		{"doc.markdown", "*parser.MarkdownParser"},
		{"doc.html", "*parser.HTMLParser"},
		{"doc.htm", "*parser.HTMLParser"},
		{"doc.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, "")
		if err != nil {
			t.Fatalf("ForFile(%q): unexpected error: %v", tt.filename, err)
		}
		if got := fmt.Sprintf("%T", p); got != tt.wantType {
			t.Errorf("ForFile(%q): expected %s, got %s", tt.filename, tt.wantType, got)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("IsSupportedExtension(%q): expected true", tt.filename)
		}
	}
}

func TestForFile_DefaultDivider(t *testing.T) {
	p, err := ForFile("doc.md", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md := p.(*MarkdownParser); md.Divider != "-----" {
		t.Errorf("expected default divider %q, got %q", "-----", md.Divider)
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, name := range []string{"doc.pdf", "doc.txt", "doc"} {
		if _, err := ForFile(name, ""); err == nil {
			t.Errorf("ForFile(%q): expected error", name)
		} else if !strings.Contains(err.Error(), "unsupported file extension") {
			t.Errorf("ForFile(%q): unexpected error %v", name, err)
		}
		if IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q): expected false", name)
		}
	}
}

func TestJSONParser(t *testing.T) {
	input := `{
  "documentId": "abc",
  "body": {"content": [
    {"paragraph": {"paragraphStyle": {"namedStyleType": "HEADING_2"},
      "elements": [{"textRun": {"content": "dog\n"}}]}},
    {"sectionBreak": {}}
  ]}
}`
	doc, err := (&JSONParser{}).Parse(strings.NewReader(input), "saved/doc.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "abc" {
		t.Errorf("expected ID %q, got %q", "abc", doc.ID)
	}
	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}
	assertFlat(t, doc, []string{"HEADING_2|dog", "section_break"})
}

func TestJSONParser_Invalid(t *testing.T) {
	for _, input := range []string{"not json", `{"title": "no body"}`} {
		if _, err := (&JSONParser{}).Parse(strings.NewReader(input), "doc.json"); err == nil {
			t.Errorf("input %q: expected error", input)
		}
	}
}
