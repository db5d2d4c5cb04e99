package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pathStyle    = lipgloss.NewStyle().Bold(true)
)

var formatLabels = map[string]string{
	"solr":  "Solr",
	"chewy": "Chewy",
}

// Saved prints the confirmation for one written output file.
func Saved(w io.Writer, format, path string) {
	label, ok := formatLabels[format]
	if !ok {
		label = format
	}
	fmt.Fprintf(w, "☀️   %s %s\n", successStyle.Render(label+" synonyms saved in"), pathStyle.Render(path))
}

// Failure prints an error with an optional hint line.
func Failure(w io.Writer, err error, hint string) {
	if hint != "" {
		fmt.Fprintln(w, errorStyle.Render(hint))
	}
	fmt.Fprintln(w, err)
}
