package ui

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/catch/internal/logtail"
)

const logTailLines = 200

// logModal shows the tail of the application log in a scrollable viewport.
type logModal struct {
	path    string
	theme   Theme
	entries []logtail.Entry
	err     string
	loaded  bool
	vp      viewport.Model
}

func newLogModal(path string, theme Theme, width, height int) logModal {
	l := logModal{path: path, theme: theme, vp: viewport.New(0, 0)}
	return l.resize(width, height)
}

// loadLogsCmd reads the log tail off the UI goroutine.
func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{err: "no log file configured"}
		}
		entries, err := logtail.Tail(path, logTailLines, slog.LevelDebug)
		if err != nil {
			return logsMsg{err: err.Error()}
		}
		return logsMsg{entries: entries}
	}
}

func (l logModal) boxWidth(width int) int {
	return max(width-8, 20)
}

// resize fits the viewport to a screen of width x height.
func (l logModal) resize(width, height int) logModal {
	l.vp.Width = l.boxWidth(width) - 4
	l.vp.Height = max(height-12, 3)
	if l.loaded {
		l.vp.SetContent(formatEntries(l.theme, l.entries, l.vp.Width))
	}
	return l
}

func (l logModal) withEntries(msg logsMsg) logModal {
	l.entries = msg.entries
	l.err = msg.err
	l.loaded = true
	l.vp.SetContent(formatEntries(l.theme, l.entries, l.vp.Width))
	l.vp.GotoBottom()
	return l
}

// Update implements Modal.
func (l logModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Escape), key.Matches(msg, keys.Logs), key.Matches(msg, keys.Quit):
			return l, nil, true
		case key.Matches(msg, keys.Top):
			l.vp.GotoTop()
			return l, nil, false
		case key.Matches(msg, keys.Bottom):
			l.vp.GotoBottom()
			return l, nil, false
		}
	}
	var cmd tea.Cmd
	l.vp, cmd = l.vp.Update(msg)
	return l, cmd, false
}

// View implements Modal.
func (l logModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	boxWidth := l.boxWidth(width)

	var body string
	switch {
	case !l.loaded:
		body = styles.MutedText.Render("Loading...")
	case l.err != "":
		body = styles.DangerText.Render(l.err)
	case len(l.entries) == 0:
		body = styles.MutedText.Render("No log entries")
	default:
		body = l.vp.View()
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Recent Log"))
	if l.path != "" {
		b.WriteString(styles.FaintText.Render("  " + truncate(l.path, max(boxWidth-20, 10))))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	b.WriteString(body)
	return renderModal(theme, width, height, boxWidth, b.String())
}

// formatEntries renders one line per entry: time, level, component, message
// and the remaining attributes.
func formatEntries(theme Theme, entries []logtail.Entry, width int) string {
	styles := theme.Styles()
	clip := lipgloss.NewStyle().MaxWidth(max(width, 1))
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		var parts []string
		if !e.Time.IsZero() {
			parts = append(parts, styles.FaintText.Render(e.Time.Format("15:04:05")))
		}
		parts = append(parts, levelStyle(styles, e.Level).Width(5).Render(e.Level.String()))
		if e.Component != "" {
			parts = append(parts, styles.AccentText.Render(e.Component))
		}
		msg := e.Message
		if msg == "" {
			msg = e.Raw
		}
		parts = append(parts, styles.Text.Render(msg))
		for _, k := range slices.Sorted(maps.Keys(e.Attrs)) {
			parts = append(parts, styles.MutedText.Render(k+"="+e.Attrs[k]))
		}
		lines = append(lines, clip.Render(strings.Join(parts, " ")))
	}
	return strings.Join(lines, "\n")
}

func levelStyle(s Styles, level slog.Level) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return s.DangerText
	case level >= slog.LevelWarn:
		return s.WarningText
	case level >= slog.LevelInfo:
		return s.InfoText
	default:
		return s.FaintText
	}
}
