package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/cguess/prepcook/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles the "Web page" export of a document.
type HTMLParser struct {
	Divider string
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{Title: titleFromFilename(filename)}

	// Extract title from <title> tag if present.
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				doc.Elements = append(doc.Elements, paragraphFromNode(headingStyle(level), n))
				return
			}

			switch n.Data {
			case "script", "style", "head":
				return
			case "table":
				doc.Elements = append(doc.Elements, &doctree.Element{Kind: doctree.KindTable})
				return
			case "hr":
				doc.Elements = append(doc.Elements, doctree.NewParagraph(doctree.StyleNormal, p.Divider))
				return
			case "p", "li":
				doc.Elements = append(doc.Elements, paragraphFromNode(doctree.StyleNormal, n))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	return doc, nil
}

// paragraphFromNode turns each descendant text node into a run, collapsing
// whitespace the way a browser renders it.
func paragraphFromNode(style string, n *html.Node) *doctree.Element {
	para := &doctree.Paragraph{Style: style}
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			if s := collapseSpace(n.Data); s != "" {
				para.Runs = append(para.Runs, doctree.Run{Content: s})
			}
		case n.Type == html.ElementNode && n.Data == "br":
			para.Runs = append(para.Runs, doctree.Run{Content: "\n"})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	if len(para.Runs) > 0 {
		para.Runs[0].Content = strings.TrimLeft(para.Runs[0].Content, " ")
	}
	return &doctree.Element{Kind: doctree.KindParagraph, Paragraph: para}
}

// collapseSpace folds each whitespace sequence into one space. A run that
// is only whitespace collapses to "".
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if isHTMLSpace(s[0]) {
		out = " " + out
	}
	if isHTMLSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isHTMLSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
