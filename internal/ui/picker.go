package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// storePicker asks which store to open, pre-filled with a generated name.
type storePicker struct {
	input     textinput.Model
	submitted bool
}

func newStorePicker(suggestion string) storePicker {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "Store Name"
	ti.CharLimit = 128
	ti.Width = 40
	ti.SetValue(suggestion)
	ti.CursorEnd()
	ti.Focus()
	return storePicker{input: ti}
}

func (p storePicker) value() string {
	return strings.TrimSpace(p.input.Value())
}

// Update implements Modal.
func (p storePicker) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Escape):
			return p, nil, true
		case key.Matches(msg, keys.Confirm):
			if p.value() == "" {
				return p, nil, false
			}
			p.submitted = true
			return p, nil, true
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

// View implements Modal.
func (p storePicker) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Please Enter A Store"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Render("enter"))
	b.WriteString(styles.MutedText.Render(" visit store  "))
	b.WriteString(styles.AccentText.Render("esc"))
	b.WriteString(styles.MutedText.Render(" cancel"))
	return renderModal(theme, width, height, 52, b.String())
}
