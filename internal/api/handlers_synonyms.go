package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cguess/prepcook/internal/format"
	"github.com/cguess/prepcook/internal/gdocs"
	"github.com/cguess/prepcook/internal/parser"
	"github.com/cguess/prepcook/internal/pipeline"
	"github.com/cguess/prepcook/internal/synonyms"
	"github.com/go-chi/chi/v5"
)

// formatJSON returns the entries as structured JSON instead of a file body.
const formatJSON = "json"

type exportResponse struct {
	DocumentID string           `json:"document_id"`
	Title      string           `json:"title"`
	Entries    []synonyms.Entry `json:"entries"`
}

func (s *Server) handleDocumentSynonyms(w http.ResponseWriter, r *http.Request) {
	name, err := outputFormat(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	docID := gdocs.ParseDocumentID(chi.URLParam(r, "docID"))

	exp, err := s.exporter.Build(r.Context(), pipeline.Source{DocumentID: docID})
	if err != nil {
		s.writeFetchError(w, docID, err)
		return
	}
	s.writeExport(w, r, name, exp)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	name, err := outputFormat(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := s.exporter.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.writeExport(w, r, name, s.exporter.Scan(doc))
}

// writeExport renders exp and answers conditional requests by ETag.
func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, name string, exp *pipeline.Export) {
	var (
		body  []byte
		ctype string
		err   error
	)
	if name == formatJSON {
		body, err = json.Marshal(exportResponse{
			DocumentID: exp.Document.ID,
			Title:      exp.Document.Title,
			Entries:    exp.Result.Entries(),
		})
		ctype = "application/json"
	} else {
		body, err = pipeline.Render(name, exp.Result)
		ctype = "text/plain; charset=utf-8"
	}
	if err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	etag := `"` + pipeline.ContentHashHex(body) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", ctype)
	w.Write(body)
}

// writeFetchError passes through the upstream "not found" and "forbidden"
// statuses and reports every other failure as a bad gateway.
func (s *Server) writeFetchError(w http.ResponseWriter, docID string, err error) {
	var fe *gdocs.FetchError
	if !errors.As(err, &fe) {
		s.log.Error("export failed", "doc_id", docID, "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	code := http.StatusBadGateway
	switch fe.StatusCode {
	case http.StatusNotFound, http.StatusForbidden:
		code = fe.StatusCode
	case http.StatusBadRequest:
		code = http.StatusNotFound
	}
	s.log.Warn("document fetch failed", "doc_id", docID, "upstream_status", fe.StatusCode, "error", err)
	jsonError(w, fe.Hint(), code)
}

func outputFormat(r *http.Request) (string, error) {
	name := strings.ToLower(r.URL.Query().Get("format"))
	if name == "" {
		return format.Solr, nil
	}
	if name == formatJSON {
		return name, nil
	}
	if _, ok := format.Writers[name]; !ok {
		return "", fmt.Errorf("unknown format %q (want one of %s, %s)", name, strings.Join(format.Names(), ", "), formatJSON)
	}
	return name, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
