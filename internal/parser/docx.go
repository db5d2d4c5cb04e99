package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cguess/prepcook/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "prepcook-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	wd, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &doctree.Document{Title: titleFromFilename(filename)}
	for _, item := range wd.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			doc.Elements = append(doc.Elements, docxParagraph(it))
		case *docx.Table:
			doc.Elements = append(doc.Elements, &doctree.Element{Kind: doctree.KindTable})
		default:
			doc.Elements = append(doc.Elements, &doctree.Element{Kind: doctree.KindOther})
		}
	}
	return doc, nil
}

func docxParagraph(para *docx.Paragraph) *doctree.Element {
	out := &doctree.Paragraph{Style: docxStyle(para)}
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var buf strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
		out.Runs = append(out.Runs, doctree.Run{Content: buf.String()})
	}
	return &doctree.Element{Kind: doctree.KindParagraph, Paragraph: out}
}

// docxStyle maps a Word paragraph style ID or name onto the Docs API
// named style.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return doctree.StyleNormal
	}
	style := strings.ReplaceAll(strings.ToLower(para.Properties.Style.Val), " ", "")
	switch style {
	case "title":
		return doctree.StyleTitle
	case "heading1":
		return doctree.StyleHeading1
	case "heading2":
		return doctree.StyleHeading2
	case "heading3":
		return doctree.StyleHeading3
	case "heading4":
		return doctree.StyleHeading4
	case "heading5":
		return doctree.StyleHeading5
	case "heading6":
		return doctree.StyleHeading6
	}
	return doctree.StyleNormal
}
