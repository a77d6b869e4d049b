package ui

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/catch/internal/fish"
	"github.com/five82/catch/internal/logtail"
	"github.com/five82/catch/internal/prefs"
	"github.com/five82/catch/internal/state"
	"github.com/five82/catch/internal/storeid"
)

// Pane identifies one of the three storefront regions.
type Pane int

const (
	PaneMenu Pane = iota
	PaneOrder
	PaneInventory
	paneCount
)

// String returns the pane title.
func (p Pane) String() string {
	switch p {
	case PaneMenu:
		return "Menu"
	case PaneOrder:
		return "Your Order"
	case PaneInventory:
		return "Inventory"
	default:
		return ""
	}
}

// Storefront is the controller surface the UI drives.
type Storefront interface {
	Snapshot() state.Snapshot
	AddFish(f fish.Fish) (key string, added bool)
	UpdateFish(key string, f fish.Fish)
	DeleteFish(key string)
	LoadSampleFishes()
	AddToOrder(key string)
	RemoveFromOrder(key string)
	SwitchStore(ctx context.Context, id string) error
	SetNotify(fn func())
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Storefront Storefront
	ThemeName  string
	PrefsPath  string
	LogPath    string
	Backend    string
	PickStore  bool // open the store picker on start
	Logger     *slog.Logger
	Rand       *rand.Rand
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	sf        Storefront
	prefsPath string
	logPath   string
	backend   string
	logger    *slog.Logger
	rng       *rand.Rand
	changes   chan struct{}
	keys      keyMap

	theme  Theme
	width  int
	height int
	ready  bool
	focus  Pane
	cursor [paneCount]int
	now    time.Time

	snapshot state.Snapshot
	switching string // store id being opened
	flash     string // transient message for the command bar

	modal    Modal
	showHelp bool
}

// New creates a new Bubble Tea model and registers its change hook with the
// storefront.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	m := Model{
		ctx:       ctx,
		sf:        opts.Storefront,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		backend:   opts.Backend,
		logger:    logger.With("component", "ui"),
		rng:       opts.Rand,
		changes:   make(chan struct{}, 1),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		now:       time.Now(),
	}
	if m.sf != nil {
		changes := m.changes
		m.sf.SetNotify(func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		m.snapshot = m.sf.Snapshot()
	}
	if opts.PickStore {
		suggestion := m.snapshot.StoreID
		if suggestion == "" {
			suggestion = storeid.Generate(m.rng)
		}
		m.modal = newStorePicker(suggestion)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.ctx, m.changes),
		tickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if lm, ok := m.modal.(logModal); ok {
			m.modal = lm.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.ctx, m.changes)

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case switchedMsg:
		return m.handleSwitched(msg)

	case logsMsg:
		if lm, ok := m.modal.(logModal); ok {
			m.modal = lm.withEntries(msg)
		}
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// refresh pulls a new snapshot and keeps every cursor in range.
func (m *Model) refresh() {
	if m.sf == nil {
		return
	}
	m.snapshot = m.sf.Snapshot()
	for p := PaneMenu; p < paneCount; p++ {
		m.cursor[p] = clampCursor(m.cursor[p], len(m.rows(p)))
	}
}

// rows returns the keys listed in pane p.
func (m Model) rows(p Pane) []string {
	switch p {
	case PaneMenu, PaneInventory:
		return m.snapshot.Fishes.Live()
	case PaneOrder:
		return m.snapshot.Order.Keys()
	default:
		return nil
	}
}

// selected returns the key under the cursor in pane p.
func (m Model) selected(p Pane) (string, bool) {
	rows := m.rows(p)
	if len(rows) == 0 {
		return "", false
	}
	return rows[clampCursor(m.cursor[p], len(rows))], true
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}
	m.flash = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.focus = (m.focus + 1) % paneCount
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil
	case key.Matches(msg, m.keys.FocusMenu):
		m.focus = PaneMenu
		return m, nil
	case key.Matches(msg, m.keys.FocusOrder):
		m.focus = PaneOrder
		return m, nil
	case key.Matches(msg, m.keys.FocusInventory):
		m.focus = PaneInventory
		return m, nil
	case key.Matches(msg, m.keys.PickStore):
		m.modal = newStorePicker(storeid.Generate(m.rng))
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.modal = newLogModal(m.logPath, m.theme, m.width, m.height)
		return m, loadLogsCmd(m.logPath)
	}

	if m.moveCursor(msg) {
		return m, nil
	}

	switch m.focus {
	case PaneMenu:
		return m.handleMenuKey(msg)
	case PaneOrder:
		return m.handleOrderKey(msg)
	case PaneInventory:
		return m.handleInventoryKey(msg)
	}
	return m, nil
}

// moveCursor applies navigation keys to the focused pane.
func (m *Model) moveCursor(msg tea.KeyMsg) bool {
	total := len(m.rows(m.focus))
	cur := &m.cursor[m.focus]
	switch {
	case key.Matches(msg, m.keys.Up):
		*cur = clampCursor(*cur-1, total)
	case key.Matches(msg, m.keys.Down):
		*cur = clampCursor(*cur+1, total)
	case key.Matches(msg, m.keys.Top):
		*cur = 0
	case key.Matches(msg, m.keys.Bottom):
		*cur = clampCursor(total-1, total)
	default:
		return false
	}
	return true
}

// updateModal forwards input to the open modal and applies its result when
// it closes.
func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if !closed {
		m.modal = next
		return m, cmd
	}
	m.modal = nil

	switch done := next.(type) {
	case fishForm:
		m.applyForm(done)
	case storePicker:
		if done.submitted {
			return m.startSwitch(done.value())
		}
	}
	return m, cmd
}

// startSwitch validates id and opens it in the background.
func (m Model) startSwitch(raw string) (tea.Model, tea.Cmd) {
	id, err := storeid.Validate(raw)
	if err != nil {
		m.flash = err.Error()
		m.modal = newStorePicker(raw)
		return m, nil
	}
	if id == m.snapshot.StoreID && m.switching == "" {
		m.rememberStore(id)
		return m, nil
	}
	m.switching = id
	return m, switchStoreCmd(m.ctx, m.sf, id)
}

// handleSwitched records the outcome of a store switch.
func (m Model) handleSwitched(msg switchedMsg) (tea.Model, tea.Cmd) {
	m.switching = ""
	if msg.err != nil {
		m.logger.Error("switch store", "store", msg.id, "error", msg.err)
		m.flash = "could not open " + msg.id
		m.refresh()
		return m, nil
	}
	m.cursor = [paneCount]int{}
	m.refresh()
	m.logger.Info("store opened", "store", msg.id)
	m.rememberStore(msg.id)
	return m, nil
}

// rememberStore saves id as the store to reopen next time.
func (m Model) rememberStore(id string) {
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.LastStore = id }); err != nil {
		m.logger.Warn("save last store", "error", err)
	}
}

// cycleTheme switches to the next theme and persists the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	name := m.theme.Name
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
		m.logger.Warn("save theme", "error", err)
	}
}

// renderMain renders the header, command bar and three panes.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderPanes())
	return b.String()
}

// paneWidths splits the screen 40/25/35 between menu, order and inventory.
func (m Model) paneWidths() [paneCount]int {
	menu := m.width * 40 / 100
	order := m.width * 25 / 100
	return [paneCount]int{menu, order, m.width - menu - order}
}

func (m Model) renderPanes() string {
	height := max(m.height-2, 3)
	widths := m.paneWidths()
	panes := make([]string, 0, paneCount)
	for p := PaneMenu; p < paneCount; p++ {
		focused := m.focus == p
		bgColor := m.theme.SurfaceAlt
		if focused {
			bgColor = m.theme.FocusBg
		}
		inner := max(widths[p]-2, 0)
		rows := max(height-2, 0)

		var content string
		switch p {
		case PaneMenu:
			content = m.renderMenu(inner, rows, bgColor)
		case PaneOrder:
			content = m.renderOrder(inner, rows, bgColor)
		case PaneInventory:
			content = m.renderInventory(inner, rows, bgColor)
		}
		panes = append(panes, m.renderTitledBox(m.paneTitle(p), content, widths[p], height, focused))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m Model) paneTitle(p Pane) string {
	switch p {
	case PaneOrder:
		if n := m.snapshot.Order.Count(); n > 0 {
			return p.String() + " (" + strconv.Itoa(n) + ")"
		}
	case PaneMenu, PaneInventory:
		if n := len(m.snapshot.Fishes.Live()); n > 0 {
			return p.String() + " (" + strconv.Itoa(n) + ")"
		}
	}
	return p.String()
}

// Messages

type changedMsg struct{}

type tickMsg time.Time

type switchedMsg struct {
	id  string
	err error
}

type logsMsg struct {
	entries []logtail.Entry
	err     string
}

// Commands

// waitForChange blocks until the storefront reports a change.
func waitForChange(ctx context.Context, changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func switchStoreCmd(ctx context.Context, sf Storefront, id string) tea.Cmd {
	return func() tea.Msg {
		return switchedMsg{id: id, err: sf.SwitchStore(ctx, id)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	ctx := m.ctx
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
