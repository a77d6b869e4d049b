package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/catch/internal/fish"
)

// orderLine is one rendered row of the order summary.
type orderLine struct {
	key       string
	label     string
	amount    string
	available bool
}

// orderLines joins the order against the inventory.
func orderLines(inv fish.Inventory, order fish.Order) []orderLine {
	keys := order.Keys()
	lines := make([]orderLine, 0, len(keys))
	for _, k := range keys {
		count := order[k]
		f := inv[k]
		switch {
		case f == nil:
			lines = append(lines, orderLine{key: k, label: "Sorry, fish is no longer available"})
		case !f.Available():
			lines = append(lines, orderLine{key: k, label: fmt.Sprintf("Sorry %s is no longer available", f.Name)})
		default:
			lines = append(lines, orderLine{
				key:       k,
				label:     fmt.Sprintf("%d lbs %s", count, f.Name),
				amount:    fish.FormatPrice(count * f.Price),
				available: true,
			})
		}
	}
	return lines
}

// renderOrder renders the order lines followed by the total.
func (m Model) renderOrder(width, height int, bgColor string) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(bgColor)
	lines := orderLines(m.snapshot.Fishes, m.snapshot.Order)

	var out []string
	if len(lines) == 0 {
		out = append(out, m.renderEmpty("Your order is empty.", width, bgColor))
	} else {
		cursor := clampCursor(m.cursor[PaneOrder], len(lines))
		start, end := visibleRange(cursor, len(lines), max(height-2, 1))
		for i := start; i < end; i++ {
			out = append(out, m.orderRow(lines[i], width, bgColor, i == cursor && m.focus == PaneOrder))
		}
	}

	total := fish.FormatPrice(fish.Total(m.snapshot.Fishes, m.snapshot.Order))
	label := "Total:"
	rule := bg.Render(strings.Repeat("─", width), styles.FaintText)
	totalLine := bg.Render(label, styles.Text.Bold(true)) +
		bg.Spaces(max(width-len(label)-len(total), 1)) +
		bg.Render(total, styles.Price.Bold(true))
	out = append(out, rule, bg.FillLine(totalLine, width))
	return strings.Join(out, "\n")
}

func (m Model) orderRow(line orderLine, width int, bgColor string, selected bool) string {
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	labelStyle, amountStyle := styles.Text, styles.Price
	if !line.available {
		labelStyle = styles.DangerText
	}
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		labelStyle, amountStyle = sel, sel
	}

	label := truncate(line.label, max(width-len(line.amount)-1, 4))
	row := bg.Render(label, labelStyle)
	if line.amount != "" {
		row += bg.Spaces(max(width-lipgloss.Width(label)-len(line.amount), 1)) +
			bg.Render(line.amount, amountStyle)
	}
	return bg.FillLine(row, width)
}

// handleOrderKey processes keys while the order has focus.
func (m Model) handleOrderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Remove) {
		return m, nil
	}
	if k, ok := m.selected(PaneOrder); ok {
		m.sf.RemoveFromOrder(k)
		m.refresh()
	}
	return m, nil
}
