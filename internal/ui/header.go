package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	brandName    = "Catch of the Day"
	brandTagline = "Fresh Seafood Market"
)

// renderHeader renders branding, the store identity and the sync badge.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render(brandName, styles.Logo) + bg.Space() +
			bg.Render("·", styles.FaintText) + bg.Space() +
			bg.Render(brandTagline, styles.Tagline),
	}

	store := m.snapshot.StoreID
	if m.switching != "" {
		store = m.switching
	}
	if store != "" {
		parts = append(parts,
			bg.Render("Store:", styles.MutedText)+bg.Space()+
				bg.Render(truncate(store, 40), styles.Text))
	}
	if m.backend != "" {
		parts = append(parts, bg.Render(m.backend, styles.FaintText))
	}

	status, detail := m.syncStatus()
	badge := styles.StatusStyle(status).Render(strings.ToUpper(status))
	if detail != "" {
		badge += bg.Space() + bg.Render(detail, styles.MutedText)
	}
	parts = append(parts, badge)

	if err := m.snapshot.LastError; err != nil {
		maxErr := 60
		if m.width < 100 {
			maxErr = 30
		}
		parts = append(parts, bg.Render(truncate(err.Error(), maxErr), styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// syncStatus classifies the snapshot into a badge key and a detail line.
func (m Model) syncStatus() (status, detail string) {
	snap := m.snapshot
	switch {
	case m.switching != "":
		return "connecting", "opening store"
	case snap.IsOffline():
		if !snap.LastSynced.IsZero() {
			return "offline", "last synced " + humanize.RelTime(snap.LastSynced, m.now, "ago", "from now")
		}
		return "offline", "retrying"
	case snap.LastError != nil:
		return "error", ""
	case !snap.Synced:
		return "connecting", ""
	default:
		return "live", "synced " + humanize.RelTime(snap.LastSynced, m.now, "ago", "from now")
	}
}

// renderCommandBar renders the key hints for the focused pane.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.focus {
	case PaneMenu:
		commands = []cmd{{"a", "Add to order"}, {"j/k", "Navigate"}}
	case PaneOrder:
		commands = []cmd{{"x", "Remove"}, {"j/k", "Navigate"}}
	case PaneInventory:
		commands = []cmd{{"n", "New"}, {"e", "Edit"}, {"D", "Delete"}, {"S", "Samples"}}
	}
	commands = append(commands,
		cmd{"Tab", "Focus"},
		cmd{"s", "Store"},
		cmd{"L", "Log"},
		cmd{"?", "More"},
	)

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))
	if m.flash != "" {
		segments = append(segments,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.flash, 50), styles.WarningText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Padding(0, 1).
		Width(m.width).
		Render(bg.Join(segments, "  "))
}
