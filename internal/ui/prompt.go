package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("prompt cancelled")

// PromptDocumentID asks for a document ID or URL on the terminal.
func PromptDocumentID(in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(newPromptModel(), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run prompt: %w", err)
	}
	m := final.(promptModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.value, nil
}

type promptModel struct {
	input     textinput.Model
	value     string
	problem   string
	cancelled bool
}

func newPromptModel() promptModel {
	ti := textinput.New()
	ti.Placeholder = "1AbC...xyz or https://docs.google.com/document/d/..."
	ti.CharLimit = 512
	ti.Width = 64
	ti.Focus()
	return promptModel{input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			v := strings.TrimSpace(m.input.Value())
			if v == "" {
				m.problem = "A document ID is required."
				return m, nil
			}
			m.value = v
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.value != "" || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render("Document ID"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.problem != "" {
		b.WriteString(errorStyle.Render(m.problem))
	} else {
		b.WriteString(helpStyle.Render("Get this from the URL of the document. enter: confirm, esc: cancel"))
	}
	b.WriteString("\n")
	return b.String()
}
