package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cguess/prepcook/internal/config"
	"github.com/cguess/prepcook/internal/doctree"
	"github.com/cguess/prepcook/internal/format"
	"github.com/cguess/prepcook/internal/parser"
	"github.com/cguess/prepcook/internal/synonyms"
)

// Fetcher retrieves a document by ID from a remote store.
type Fetcher interface {
	Fetch(ctx context.Context, documentID string) (*doctree.Document, error)
}

// Source selects where a document comes from. Exactly one field is set.
type Source struct {
	DocumentID string
	InputFile  string
}

// Target is one output file to write.
type Target struct {
	Format string
	Path   string
}

// Export is a scanned document.
type Export struct {
	Document *doctree.Document
	Result   *synonyms.Result
}

// Exporter runs the fetch, scan and write phases.
type Exporter struct {
	fetcher Fetcher
	scanner synonyms.Scanner
	divider string
	log     *slog.Logger

	// OnSaved is called after each output file is written.
	OnSaved func(t Target)
}

// NewExporter builds an exporter. fetcher may be nil when only local files
// are exported.
func NewExporter(fetcher Fetcher, cfg config.Config, log *slog.Logger) *Exporter {
	return &Exporter{
		fetcher: fetcher,
		scanner: synonyms.Scanner{HeadingStyle: cfg.HeadingStyle, Divider: cfg.Divider},
		divider: cfg.Divider,
		log:     log,
	}
}

// Targets lists the output files named by cfg for the given formats, in
// order.
func Targets(cfg config.Config, formats []string) ([]Target, error) {
	var out []Target
	for _, name := range formats {
		switch name {
		case format.Solr:
			out = append(out, Target{Format: name, Path: cfg.SolrOutput})
		case format.Chewy:
			out = append(out, Target{Format: name, Path: cfg.ChewyOutput})
		default:
			return nil, fmt.Errorf("unknown output format %q", name)
		}
	}
	return out, nil
}

// Load obtains the document from src.
func (e *Exporter) Load(ctx context.Context, src Source) (*doctree.Document, error) {
	switch {
	case src.InputFile != "":
		f, err := os.Open(src.InputFile)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		return e.Parse(f, src.InputFile)
	case src.DocumentID != "":
		if e.fetcher == nil {
			return nil, errors.New("no document fetcher configured")
		}
		return e.fetcher.Fetch(ctx, src.DocumentID)
	}
	return nil, errors.New("no document ID or input file given")
}

// Parse reads an exported document from r, picking the parser by filename.
func (e *Exporter) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	p, err := parser.ForFile(filename, e.divider)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// Scan runs the paragraph scanner over doc and logs what it found.
func (e *Exporter) Scan(doc *doctree.Document) *Export {
	log := e.log.With("doc_id", doc.ID, "title", doc.Title)
	res := e.scanner.Scan(doc.Elements)

	st := res.Stats
	log.Info("scanned document",
		"elements", st.Elements,
		"paragraphs", st.Paragraphs,
		"headwords", res.Len(),
		"assignments", st.Assignments,
	)
	log.Debug("scan details",
		"non_paragraph", st.NonParagraph,
		"header_runs", st.HeaderRuns,
		"skipped", st.Skipped,
		"replaced", st.Replaced,
	)
	if st.Orphans > 0 {
		log.Warn("synonym lines before the first headword", "count", st.Orphans)
	}
	if res.Len() == 0 {
		log.Warn("no synonyms found", "header_runs", st.HeaderRuns)
	}
	return &Export{Document: doc, Result: res}
}

// Build loads and scans a document.
func (e *Exporter) Build(ctx context.Context, src Source) (*Export, error) {
	doc, err := e.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return e.Scan(doc), nil
}

// Save writes res to each target in order and stops at the first failure.
func (e *Exporter) Save(res *synonyms.Result, targets []Target) error {
	for _, t := range targets {
		if err := format.SaveFile(t.Path, t.Format, res); err != nil {
			return err
		}
		e.log.Info("wrote output", "format", t.Format, "path", t.Path, "entries", res.Len())
		if e.OnSaved != nil {
			e.OnSaved(t)
		}
	}
	return nil
}

// Run builds the export and writes every target.
func (e *Exporter) Run(ctx context.Context, src Source, targets []Target) (*Export, error) {
	exp, err := e.Build(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := e.Save(exp.Result, targets); err != nil {
		return exp, err
	}
	return exp, nil
}

// Render returns res in the named format.
func Render(name string, res *synonyms.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Write(name, &buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
