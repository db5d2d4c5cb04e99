package synonyms

import (
	"strings"
	"unicode"

	"github.com/cguess/prepcook/internal/doctree"
)

const (
	DefaultHeadingStyle = doctree.StyleHeading2
	DefaultDivider      = "-----"
	CommentPrefix       = "#"
)

// Scanner recovers a headword/synonym list from document paragraphs.
//
// The document starts with a free-form preamble that ends at a divider line.
// After it, each heading paragraph names a headword and each following
// paragraph is a comma-separated synonym list for it. Lines starting with '#'
// are comments.
type Scanner struct {
	HeadingStyle string // Style that marks a headword; DefaultHeadingStyle if empty
	Divider      string // Line that ends the preamble; DefaultDivider if empty
}

// Scan runs the scanner with default settings.
func Scan(elements []*doctree.Element) *Result {
	var s Scanner
	return s.Scan(elements)
}

// Scan walks elements once and builds the result. It never fails: malformed
// input such as synonyms before the first heading is kept under an absent
// headword.
func (s *Scanner) Scan(elements []*doctree.Element) *Result {
	heading := s.HeadingStyle
	if heading == "" {
		heading = DefaultHeadingStyle
	}
	divider := s.Divider
	if divider == "" {
		divider = DefaultDivider
	}

	res := NewResult()
	var current string
	passedHeader := false

	for _, el := range elements {
		res.Stats.Elements++
		if el == nil || el.Kind != doctree.KindParagraph || el.Paragraph == nil {
			res.Stats.NonParagraph++
			continue
		}
		para := el.Paragraph
		res.Stats.Paragraphs++

		inBody := passedHeader
		var text strings.Builder
		var last string
		for _, run := range para.Runs {
			line := trimRight(run.Content)
			last = line
			if !passedHeader {
				if line == divider {
					passedHeader = true
				}
				res.Stats.HeaderRuns++
				continue
			}
			if line != "" && !isComment(line) {
				text.WriteString(line)
			}
		}

		// The comment check looks at the last run only, not the assembled
		// text. A paragraph whose final run is a comment is dropped even if
		// earlier runs carried content.
		joined := text.String()
		if trimRight(joined) == "" || isComment(last) {
			if inBody {
				res.Stats.Skipped++
			}
			continue
		}

		if para.Style == heading {
			current = joined
			res.Stats.Headwords++
			continue
		}

		res.Stats.Assignments++
		if current == "" {
			res.Stats.Orphans++
		}
		if res.Set(current, splitSynonyms(joined)) {
			res.Stats.Replaced++
		}
	}

	return res
}

func splitSynonyms(text string) []string {
	parts := strings.Split(text, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isComment(line string) bool {
	return strings.HasPrefix(line, CommentPrefix)
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
