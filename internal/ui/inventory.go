package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/catch/internal/fish"
)

// renderInventory lists every live fish with its status and price.
func (m Model) renderInventory(width, height int, bgColor string) string {
	keys := m.rows(PaneInventory)
	if len(keys) == 0 {
		return m.renderEmpty("Empty. n adds a fish, S loads samples.", width, bgColor)
	}

	cursor := clampCursor(m.cursor[PaneInventory], len(keys))
	start, end := visibleRange(cursor, len(keys), height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		f := m.snapshot.Fishes[keys[i]]
		lines = append(lines, m.inventoryRow(keys[i], *f, width, bgColor, i == cursor && m.focus == PaneInventory))
	}
	return strings.Join(lines, "\n")
}

func (m Model) inventoryRow(k string, f fish.Fish, width int, bgColor string, selected bool) string {
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	status := string(f.Status)
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(status)))
	keyStyle, nameStyle, priceStyle := styles.FaintText, styles.Text, styles.Price
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		keyStyle, nameStyle, priceStyle, statusStyle = sel, sel, sel, sel
	}

	price := fish.FormatPrice(f.Price)
	mark := "●"
	nameWidth := max(width-len(price)-4, 4)
	name := truncate(f.Name, nameWidth)
	if width >= 60 {
		name = truncate(f.Name, max(nameWidth-len(k)-1, 4))
	}

	row := bg.Render(mark, statusStyle) + bg.Space()
	if width >= 60 {
		row += bg.Render(k, keyStyle) + bg.Space()
	}
	row += bg.Render(name, nameStyle)
	used := lipgloss.Width(row)
	row += bg.Spaces(max(width-used-len(price), 1)) + bg.Render(price, priceStyle)
	return bg.FillLine(row, width)
}

// handleInventoryKey processes keys while the inventory has focus.
const stillConnecting = "still connecting, try again shortly"

func (m Model) handleInventoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.snapshot.Synced && key.Matches(msg, m.keys.NewFish, m.keys.EditFish, m.keys.DeleteFish, m.keys.LoadSamples) {
		m.flash = stillConnecting
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.NewFish):
		m.modal = newFishForm("", fish.Fish{Status: fish.StatusAvailable})
	case key.Matches(msg, m.keys.EditFish):
		if k, ok := m.selected(PaneInventory); ok {
			m.modal = newFishForm(k, *m.snapshot.Fishes[k])
		}
	case key.Matches(msg, m.keys.DeleteFish):
		if k, ok := m.selected(PaneInventory); ok {
			m.sf.DeleteFish(k)
			m.refresh()
		}
	case key.Matches(msg, m.keys.LoadSamples):
		m.sf.LoadSampleFishes()
		m.refresh()
	}
	return m, nil
}

// applyForm saves a submitted fish form through the storefront.
func (m *Model) applyForm(form fishForm) {
	if !form.submitted {
		return
	}
	// Edits made before the first remote value would be replaced by it.
	if !m.snapshot.Synced {
		m.flash = stillConnecting
		return
	}
	f := form.fish
	if form.key == "" {
		if _, added := m.sf.AddFish(f); !added {
			m.flash = "fish not added, try again"
		}
	} else {
		m.sf.UpdateFish(form.key, f)
	}
	m.refresh()
}
