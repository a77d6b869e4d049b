package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	Background string // outside the panes
	Surface    string // header and command bar
	SurfaceAlt string // unfocused panes
	FocusBg    string // focused pane

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Badge colors keyed by fish status and sync status.
	StatusColors map[string]string
}

// StatusColor returns the badge color for status, or the muted text color.
func (t Theme) StatusColor(status string) string {
	if color, ok := t.StatusColors[strings.ToLower(strings.TrimSpace(status))]; ok {
		return color
	}
	return t.Muted
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header  lipgloss.Style
	Logo    lipgloss.Style
	Price   lipgloss.Style
	Tagline lipgloss.Style

	theme Theme
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: fg(t.Text).
			Background(lipgloss.Color(t.Surface)).
			Padding(0, 1),
		Logo:    fg(t.Warning).Bold(true),
		Price:   fg(t.Success),
		Tagline: fg(t.Info).Italic(true),

		theme: t,
	}
}

// StatusStyle returns a badge style for the given status.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(s.theme.StatusColor(status))).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles whose text styles all carry an
// explicit background instead of inheriting the terminal's.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	for _, style := range []*lipgloss.Style{
		&s.Text, &s.MutedText, &s.FaintText, &s.AccentText, &s.WarningText,
		&s.DangerText, &s.InfoText, &s.Header, &s.Logo, &s.Price, &s.Tagline,
	} {
		*style = style.Background(bg)
	}
	return s
}

// palette is the minimal color set a theme is derived from.
type palette struct {
	bg0, bg1, bg2, bg3, bg4 string // darkest to lightest surface
	sel, fg, comment, faint string
	blue, green, yellow     string
	red, cyan, orange       string
}

func newTheme(name string, p palette) Theme {
	return Theme{
		Name:          name,
		Background:    p.bg0,
		Surface:       p.bg1,
		SurfaceAlt:    p.bg2,
		FocusBg:       p.bg3,
		SelectionBg:   p.sel,
		SelectionText: p.fg,
		Border:        p.bg4,
		BorderFocus:   p.blue,
		Text:          p.fg,
		Muted:         p.comment,
		Faint:         p.faint,
		Accent:        p.blue,
		Success:       p.green,
		Warning:       p.yellow,
		Danger:        p.red,
		Info:          p.cyan,
		StatusColors: map[string]string{
			"available":   p.green,
			"unavailable": p.red,
			"live":        p.green,
			"connecting":  p.yellow,
			"offline":     p.red,
			"error":       p.orange,
		},
	}
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

var themes = map[string]Theme{
	// https://github.com/EdenEast/nightfox.nvim
	"Nightfox": newTheme("Nightfox", palette{
		bg0: "#131a24", bg1: "#192330", bg2: "#212e3f", bg3: "#29394f", bg4: "#39506d",
		sel: "#2b3b51", fg: "#cdcecf", comment: "#738091", faint: "#71839b",
		blue: "#719cd6", green: "#81b29a", yellow: "#dbc074",
		red: "#c94f6d", cyan: "#63cdcf", orange: "#f4a261",
	}),
	// https://github.com/rebelot/kanagawa.nvim
	"Kanagawa": newTheme("Kanagawa", palette{
		bg0: "#16161D", bg1: "#1F1F28", bg2: "#2A2A37", bg3: "#363646", bg4: "#54546D",
		sel: "#2D4F67", fg: "#DCD7BA", comment: "#C8C093", faint: "#727169",
		blue: "#7E9CD8", green: "#98BB6C", yellow: "#E6C384",
		red: "#E46876", cyan: "#7FB4CA", orange: "#FFA066",
	}),
	// Tailwind slate with sky accents
	"Slate": newTheme("Slate", palette{
		bg0: "#020617", bg1: "#0f172a", bg2: "#1e293b", bg3: "#283548", bg4: "#334155",
		sel: "#0284c7", fg: "#f1f5f9", comment: "#94a3b8", faint: "#64748b",
		blue: "#38bdf8", green: "#22c55e", yellow: "#f59e0b",
		red: "#ef4444", cyan: "#06b6d4", orange: "#f97316",
	}),
}

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[themeOrder[0]]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}
