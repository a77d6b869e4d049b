package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/catch/internal/fish"
)

// menuRowHeight is the number of lines each fish takes in the menu.
const menuRowHeight = 2

// renderMenu renders the catalog: name and price on one line, the
// description below.
func (m Model) renderMenu(width, height int, bgColor string) string {
	keys := m.rows(PaneMenu)
	if len(keys) == 0 {
		return m.renderEmpty("No fish yet. Press S in the inventory to load samples.", width, bgColor)
	}

	cursor := clampCursor(m.cursor[PaneMenu], len(keys))
	start, end := visibleRange(cursor, len(keys), height/menuRowHeight)
	lines := make([]string, 0, (end-start)*menuRowHeight)
	for i := start; i < end; i++ {
		f := m.snapshot.Fishes[keys[i]]
		selected := i == cursor && m.focus == PaneMenu
		lines = append(lines, m.menuRow(*f, width, bgColor, selected)...)
	}
	return strings.Join(lines, "\n")
}

func (m Model) menuRow(f fish.Fish, width int, bgColor string, selected bool) []string {
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	nameStyle, priceStyle, descStyle := styles.Text.Bold(true), styles.Price, styles.MutedText
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		nameStyle, priceStyle, descStyle = sel.Bold(true), sel, sel
	}

	price := fish.FormatPrice(f.Price)
	tag := ""
	if !f.Available() {
		tag = "Sold Out"
	}
	nameWidth := max(width-len(price)-len(tag)-3, 4)
	name := truncate(f.Name, nameWidth)

	line := bg.Render(name, nameStyle)
	gap := width - lipgloss.Width(name) - len(price) - 1
	if tag != "" {
		gap -= len(tag) + 1
	}
	line += bg.Spaces(max(gap, 1)) + bg.Render(price, priceStyle)
	if tag != "" {
		line += bg.Space() + styles.StatusStyle(string(fish.StatusUnavailable)).Padding(0).Render(tag)
	}

	desc := bg.Render(truncate(f.Desc, max(width-2, 0)), descStyle)
	return []string{
		bg.FillLine(line, width),
		bg.FillLine(bg.Spaces(2)+desc, width),
	}
}

// renderEmpty renders a muted placeholder line.
func (m Model) renderEmpty(text string, width int, bgColor string) string {
	bg := NewBgStyle(bgColor)
	return bg.FillLine(bg.Render(truncate(text, width), m.theme.Styles().MutedText), width)
}

// handleMenuKey processes keys while the menu has focus.
func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.AddToOrder) {
		return m, nil
	}
	k, ok := m.selected(PaneMenu)
	if !ok {
		return m, nil
	}
	if f := m.snapshot.Fishes[k]; f == nil || !f.Available() {
		m.flash = "sold out"
		return m, nil
	}
	m.sf.AddToOrder(k)
	m.refresh()
	return m, nil
}
