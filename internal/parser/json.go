package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cguess/prepcook/internal/doctree"
	"github.com/cguess/prepcook/internal/gdocs"
	docs "google.golang.org/api/docs/v1"
)

// JSONParser reads a saved Docs API documents.get response.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	var raw docs.Document
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document json: %w", err)
	}
	if raw.Body == nil {
		return nil, fmt.Errorf("decode document json: %s has no body", filename)
	}

	doc := gdocs.Convert(&raw)
	if doc.Title == "" {
		doc.Title = titleFromFilename(filename)
	}
	return doc, nil
}
