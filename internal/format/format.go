package format

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cguess/prepcook/internal/synonyms"
)

const (
	Solr  = "solr"
	Chewy = "chewy"
)

// WriterFunc renders a result to w.
type WriterFunc func(w io.Writer, res *synonyms.Result) error

// Writers maps format names to their renderers.
var Writers = map[string]WriterFunc{
	Solr:  WriteSolr,
	Chewy: WriteChewy,
}

// Names returns the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(Writers))
	for name := range Writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write renders res in the named format.
func Write(name string, w io.Writer, res *synonyms.Result) error {
	fn, ok := Writers[name]
	if !ok {
		return fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return fn(w, res)
}

// Line joins a headword and its synonyms into one comma-separated line.
func Line(e synonyms.Entry) string {
	var sb strings.Builder
	sb.WriteString(e.Headword)
	for _, s := range e.Synonyms {
		sb.WriteByte(',')
		sb.WriteString(s)
	}
	return sb.String()
}

// WriteSolr writes one "headword,syn1,syn2" line per entry, the layout of a
// Solr synonyms file.
func WriteSolr(w io.Writer, res *synonyms.Result) error {
	bw := bufio.NewWriter(w)
	for _, e := range res.Entries() {
		bw.WriteString(Line(e))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// WriteChewy writes the entries as a bracketed array of quoted lines, ready
// to paste into a Chewy synonym filter definition.
func WriteChewy(w io.Writer, res *synonyms.Result) error {
	entries := res.Entries()
	quoted := make([]string, 0, len(entries))
	for _, e := range entries {
		quoted = append(quoted, `"`+quoteEscaper.Replace(Line(e))+`"`)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("[\n")
	bw.WriteString(strings.Join(quoted, ",\n"))
	bw.WriteString("\n]")
	return bw.Flush()
}

// SaveFile writes res to path in the named format, truncating any existing
// file.
func SaveFile(path, name string, res *synonyms.Result) (err error) {
	if _, ok := Writers[name]; !ok {
		return Write(name, nil, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := Write(name, f, res); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
