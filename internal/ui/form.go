package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/catch/internal/fish"
)

const (
	fieldName = iota
	fieldPrice
	fieldStatus
	fieldDesc
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Price", "Status", "Desc", "Image"}

// fishForm edits one fish record. An empty key adds a new fish.
type fishForm struct {
	key       string
	inputs    [fieldCount]textinput.Model
	focus     int
	err       string
	submitted bool
	fish      fish.Fish
}

func newFishForm(k string, f fish.Fish) fishForm {
	form := fishForm{key: k, fish: f}
	placeholders := [fieldCount]string{"Fish Name", "$17.24", "available", "Fish Desc", "https://..."}
	values := [fieldCount]string{f.Name, "", string(f.Status), f.Desc, f.Image}
	if k != "" || f.Price != 0 {
		values[fieldPrice] = strconv.Itoa(f.Price)
	}
	for i := range form.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = 40
		ti.SetValue(values[i])
		form.inputs[i] = ti
	}
	form.inputs[fieldName].Focus()
	return form
}

// Update implements Modal.
func (f fishForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Escape):
			return f, nil, true
		case key.Matches(msg, keys.Confirm):
			parsed, err := f.parse()
			if err != nil {
				f.err = err.Error()
				return f, nil, false
			}
			f.fish = parsed
			f.submitted = true
			return f, nil, true
		case key.Matches(msg, keys.NextField):
			cmd := f.setFocus((f.focus + 1) % fieldCount)
			return f, cmd, false
		case key.Matches(msg, keys.PrevField):
			cmd := f.setFocus((f.focus + fieldCount - 1) % fieldCount)
			return f, cmd, false
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

// setFocus moves the cursor to field i.
func (f *fishForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// parse validates the inputs into a fish record.
func (f fishForm) parse() (fish.Fish, error) {
	name := strings.TrimSpace(f.inputs[fieldName].Value())
	if name == "" {
		return fish.Fish{}, errors.New("name is required")
	}
	price, err := fish.ParsePrice(f.inputs[fieldPrice].Value())
	if err != nil {
		return fish.Fish{}, err
	}
	status, err := fish.ParseStatus(f.inputs[fieldStatus].Value())
	if err != nil {
		return fish.Fish{}, err
	}
	return fish.Fish{
		Name:   name,
		Price:  price,
		Status: status,
		Desc:   strings.TrimSpace(f.inputs[fieldDesc].Value()),
		Image:  strings.TrimSpace(f.inputs[fieldImage].Value()),
	}, nil
}

// View implements Modal.
func (f fishForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	title := "Add Fish"
	if f.key != "" {
		title = "Edit " + f.key
	}
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, input := range f.inputs {
		labelStyle := styles.MutedText
		if i == f.focus {
			labelStyle = styles.AccentText.Bold(true)
		}
		b.WriteString(labelStyle.Width(8).Render(fieldLabels[i]))
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	hint := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.AccentText.Render("enter"), styles.MutedText.Render(" save  "),
		styles.AccentText.Render("tab"), styles.MutedText.Render(" next  "),
		styles.AccentText.Render("esc"), styles.MutedText.Render(" cancel"),
	)
	b.WriteString(hint)

	return renderModal(theme, width, height, 56, b.String())
}
