package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cguess/prepcook/internal/doctree"
	"github.com/cguess/prepcook/internal/synonyms"
)

// Parser converts an exported copy of a synonym document into paragraphs.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this tool can read offline.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename. Formats without a
// native divider element (HTML <hr>, Markdown thematic breaks) emit divider
// as the paragraph text; an empty divider means synonyms.DefaultDivider.
func ForFile(filename, divider string) (Parser, error) {
	if divider == "" {
		divider = synonyms.DefaultDivider
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{Divider: divider}, nil
	case ".html", ".htm":
		return &HTMLParser{Divider: divider}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
