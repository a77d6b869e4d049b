package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/catch/internal/fish"
	"github.com/five82/catch/internal/prefs"
	"github.com/five82/catch/internal/state"
)

type fakeStorefront struct {
	snap      state.Snapshot
	notify    func()
	added     []fish.Fish
	updated   map[string]fish.Fish
	deleted   []string
	samples   int
	ordered   []string
	removed   []string
	switched  []string
	switchErr error
}

func newFakeStorefront(inv fish.Inventory, order fish.Order) *fakeStorefront {
	if order == nil {
		order = fish.Order{}
	}
	return &fakeStorefront{
		snap: state.Snapshot{
			StoreID:    "salty-shiny-geese",
			Fishes:     inv,
			Order:      order,
			Synced:     true,
			LastSynced: time.Now(),
		},
		updated: make(map[string]fish.Fish),
	}
}

func (f *fakeStorefront) Snapshot() state.Snapshot {
	snap := f.snap
	snap.Fishes = f.snap.Fishes.Clone()
	snap.Order = f.snap.Order.Clone()
	return snap
}

func (f *fakeStorefront) AddFish(v fish.Fish) (string, bool) {
	f.added = append(f.added, v)
	key := "fish" + string(rune('a'+len(f.added)))
	f.snap.Fishes[key] = &v
	return key, true
}

func (f *fakeStorefront) UpdateFish(key string, v fish.Fish) {
	f.updated[key] = v
	f.snap.Fishes[key] = &v
}

func (f *fakeStorefront) DeleteFish(key string) {
	f.deleted = append(f.deleted, key)
	f.snap.Fishes[key] = nil
}

func (f *fakeStorefront) LoadSampleFishes() {
	f.samples++
	f.snap.Fishes.Merge(fish.SampleFishes())
}

func (f *fakeStorefront) AddToOrder(key string) {
	f.ordered = append(f.ordered, key)
	f.snap.Order[key]++
}

func (f *fakeStorefront) RemoveFromOrder(key string) {
	f.removed = append(f.removed, key)
	delete(f.snap.Order, key)
}

func (f *fakeStorefront) SwitchStore(_ context.Context, id string) error {
	f.switched = append(f.switched, id)
	if f.switchErr != nil {
		return f.switchErr
	}
	f.snap.StoreID = id
	f.snap.Fishes = fish.Inventory{}
	f.snap.Order = fish.Order{}
	return nil
}

func (f *fakeStorefront) SetNotify(fn func()) { f.notify = fn }

func sampleInventory() fish.Inventory {
	return fish.Inventory{
		"fish1": {Name: "Pacific Halibut", Price: 1724, Status: fish.StatusAvailable, Desc: "Everyone's favorite"},
		"fish2": {Name: "Lobster", Price: 3200, Status: fish.StatusUnavailable, Desc: "These tender mouthfuls"},
		"fish3": {Name: "Sea Scallops", Price: 1684, Status: fish.StatusAvailable},
	}
}

func newTestModel(t *testing.T, sf *fakeStorefront) Model {
	t.Helper()
	m := New(Options{
		Storefront: sf,
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNew_RegistersNonBlockingNotify(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	m := newTestModel(t, sf)
	if sf.notify == nil {
		t.Fatal("expected notify hook to be registered")
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			sf.notify()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked")
	}

	msg := waitForChange(context.Background(), m.changes)()
	if _, ok := msg.(changedMsg); !ok {
		t.Fatalf("waitForChange returned %T, want changedMsg", msg)
	}
}

func TestWaitForChange_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if msg := waitForChange(ctx, make(chan struct{}))(); msg != nil {
		t.Fatalf("waitForChange after cancel = %v, want nil", msg)
	}
}

func TestChangedMsg_RefreshesSnapshot(t *testing.T) {
	sf := newFakeStorefront(fish.Inventory{}, nil)
	m := newTestModel(t, sf)
	if got := len(m.rows(PaneMenu)); got != 0 {
		t.Fatalf("menu rows = %d, want 0", got)
	}

	sf.snap.Fishes = sampleInventory()
	next, cmd := m.Update(changedMsg{})
	m = next.(Model)
	if got := len(m.rows(PaneMenu)); got != 3 {
		t.Fatalf("menu rows = %d, want 3", got)
	}
	if cmd == nil {
		t.Fatal("expected changedMsg to re-arm the change listener")
	}
}

func TestMenu_AddToOrder(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	m := newTestModel(t, sf)

	m = press(t, m, "a", "a")
	if len(sf.ordered) != 2 || sf.ordered[0] != "fish1" {
		t.Fatalf("ordered = %v, want [fish1 fish1]", sf.ordered)
	}
	if got := m.snapshot.Order["fish1"]; got != 2 {
		t.Fatalf("order[fish1] = %d, want 2", got)
	}
}

func TestMenu_SoldOutCannotBeAdded(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	m := newTestModel(t, sf)

	m = press(t, m, "j", "enter")
	if len(sf.ordered) != 0 {
		t.Fatalf("ordered = %v, want none", sf.ordered)
	}
	if m.flash == "" {
		t.Fatal("expected a sold out message")
	}
}

func TestOrder_RemoveSelectedLine(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), fish.Order{"fish1": 2, "fish3": 1})
	m := newTestModel(t, sf)

	m = press(t, m, "2", "j", "x")
	if len(sf.removed) != 1 || sf.removed[0] != "fish3" {
		t.Fatalf("removed = %v, want [fish3]", sf.removed)
	}
	if _, ok := m.snapshot.Order["fish3"]; ok {
		t.Fatal("fish3 still in order")
	}
}

func TestInventory_DeleteAndSamples(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	m := newTestModel(t, sf)

	m = press(t, m, "3", "D")
	if len(sf.deleted) != 1 || sf.deleted[0] != "fish1" {
		t.Fatalf("deleted = %v, want [fish1]", sf.deleted)
	}
	for _, k := range m.rows(PaneInventory) {
		if k == "fish1" {
			t.Fatal("deleted fish still listed")
		}
	}

	m = press(t, m, "S")
	if sf.samples != 1 {
		t.Fatalf("samples = %d, want 1", sf.samples)
	}
	if got := len(m.rows(PaneInventory)); got != 9 {
		t.Fatalf("inventory rows = %d, want 9", got)
	}
}

func TestInventory_EditsWaitForFirstSync(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	sf.snap.Synced = false
	sf.snap.LastSynced = time.Time{}
	m := newTestModel(t, sf)

	m = press(t, m, "3", "D", "S", "n", "e")
	if len(sf.deleted) != 0 || sf.samples != 0 {
		t.Fatalf("deleted = %v samples = %d, want nothing before sync", sf.deleted, sf.samples)
	}
	if m.modal != nil {
		t.Fatalf("modal = %T, want none before sync", m.modal)
	}
	if m.flash != stillConnecting {
		t.Fatalf("flash = %q, want %q", m.flash, stillConnecting)
	}

	sf.snap.Synced = true
	next, _ := m.Update(changedMsg{})
	m = press(t, next.(Model), "D")
	if len(sf.deleted) != 1 {
		t.Fatalf("deleted = %v, want one delete after sync", sf.deleted)
	}
}

func TestInventory_FormSubmittedBeforeSyncIsHeld(t *testing.T) {
	sf := newFakeStorefront(fish.Inventory{}, nil)
	m := newTestModel(t, sf)
	m = press(t, m, "3", "n")
	form := m.modal.(fishForm)
	form.inputs[fieldName].SetValue("King Crab")
	form.inputs[fieldPrice].SetValue("2499")
	m.modal = form

	// The store is switched while the form is open and has not synced yet.
	sf.snap.Synced = false
	next, _ := m.Update(changedMsg{})
	m = press(t, next.(Model), "enter")
	if len(sf.added) != 0 {
		t.Fatalf("added = %v, want nothing before sync", sf.added)
	}
	if m.flash != stillConnecting {
		t.Fatalf("flash = %q, want %q", m.flash, stillConnecting)
	}
}

func TestInventory_NewFishForm(t *testing.T) {
	sf := newFakeStorefront(fish.Inventory{}, nil)
	m := newTestModel(t, sf)

	m = press(t, m, "3", "n")
	form, ok := m.modal.(fishForm)
	if !ok {
		t.Fatalf("modal = %T, want fishForm", m.modal)
	}
	form.inputs[fieldName].SetValue("King Crab")
	form.inputs[fieldPrice].SetValue("$24.99")
	form.inputs[fieldDesc].SetValue("Legs for days")
	m.modal = form

	m = press(t, m, "enter")
	if m.modal != nil {
		t.Fatalf("modal still open: %T", m.modal)
	}
	if len(sf.added) != 1 {
		t.Fatalf("added = %v, want one fish", sf.added)
	}
	want := fish.Fish{Name: "King Crab", Price: 2499, Status: fish.StatusAvailable, Desc: "Legs for days"}
	if sf.added[0] != want {
		t.Fatalf("added = %+v, want %+v", sf.added[0], want)
	}
}

func TestInventory_FormRejectsBadPrice(t *testing.T) {
	sf := newFakeStorefront(fish.Inventory{}, nil)
	m := newTestModel(t, sf)

	m = press(t, m, "3", "n")
	form := m.modal.(fishForm)
	form.inputs[fieldName].SetValue("Eel")
	form.inputs[fieldPrice].SetValue("cheap")
	m.modal = form

	m = press(t, m, "enter")
	form, ok := m.modal.(fishForm)
	if !ok {
		t.Fatal("form closed on invalid price")
	}
	if form.err == "" {
		t.Fatal("expected a validation error")
	}
	if len(sf.added) != 0 {
		t.Fatalf("added = %v, want none", sf.added)
	}

	m = press(t, m, "esc")
	if m.modal != nil {
		t.Fatal("esc did not close the form")
	}
}

func TestInventory_EditUpdatesRecord(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	m := newTestModel(t, sf)

	m = press(t, m, "3", "e")
	form, ok := m.modal.(fishForm)
	if !ok {
		t.Fatalf("modal = %T, want fishForm", m.modal)
	}
	if got := form.inputs[fieldPrice].Value(); got != "1724" {
		t.Fatalf("price input = %q, want 1724", got)
	}
	form.inputs[fieldStatus].SetValue("sold out")
	m.modal = form

	press(t, m, "enter")
	got, ok := sf.updated["fish1"]
	if !ok {
		t.Fatal("fish1 not updated")
	}
	if got.Status != fish.StatusUnavailable || got.Name != "Pacific Halibut" {
		t.Fatalf("updated = %+v", got)
	}
}

func TestStorePicker_SwitchesAndRemembers(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	m := newTestModel(t, sf)

	m = press(t, m, "s")
	picker, ok := m.modal.(storePicker)
	if !ok {
		t.Fatalf("modal = %T, want storePicker", m.modal)
	}
	if picker.value() == "" {
		t.Fatal("picker not pre-filled")
	}
	picker.input.SetValue("briny-deep")
	m.modal = picker

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected a switch command")
	}
	if m.switching != "briny-deep" {
		t.Fatalf("switching = %q", m.switching)
	}
	if status, _ := m.syncStatus(); status != "connecting" {
		t.Fatalf("status while switching = %q, want connecting", status)
	}

	next, _ = m.Update(cmd())
	m = next.(Model)
	if m.switching != "" || m.snapshot.StoreID != "briny-deep" {
		t.Fatalf("after switch: switching=%q store=%q", m.switching, m.snapshot.StoreID)
	}
	if got := prefs.Load(m.prefsPath).LastStore; got != "briny-deep" {
		t.Fatalf("LastStore = %q, want briny-deep", got)
	}
}

func TestStorePicker_InvalidIDKeepsPickerOpen(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	m := newTestModel(t, sf)

	m = press(t, m, "s")
	picker := m.modal.(storePicker)
	picker.input.SetValue("bad/id")
	m.modal = picker

	m = press(t, m, "enter")
	if _, ok := m.modal.(storePicker); !ok {
		t.Fatalf("modal = %T, want storePicker", m.modal)
	}
	if m.flash == "" {
		t.Fatal("expected validation message")
	}
	if len(sf.switched) != 0 {
		t.Fatalf("switched = %v, want none", sf.switched)
	}
}

func TestSwitchFailureIsReported(t *testing.T) {
	sf := newFakeStorefront(sampleInventory(), nil)
	sf.switchErr = errors.New("boom")
	m := newTestModel(t, sf)

	next, _ := m.Update(switchedMsg{id: "elsewhere", err: sf.switchErr})
	m = next.(Model)
	if !strings.Contains(m.flash, "elsewhere") {
		t.Fatalf("flash = %q", m.flash)
	}
	if got := prefs.Load(m.prefsPath).LastStore; got != "" {
		t.Fatalf("LastStore = %q, want empty", got)
	}
}

func TestPickStoreOption_OpensPicker(t *testing.T) {
	sf := newFakeStorefront(fish.Inventory{}, nil)
	m := New(Options{Storefront: sf, PickStore: true})
	if _, ok := m.modal.(storePicker); !ok {
		t.Fatalf("modal = %T, want storePicker", m.modal)
	}
}

func TestCycleTheme_Persists(t *testing.T) {
	sf := newFakeStorefront(fish.Inventory{}, nil)
	m := newTestModel(t, sf)
	start := m.theme.Name

	m = press(t, m, "T")
	if m.theme.Name == start {
		t.Fatalf("theme unchanged: %q", start)
	}
	if got := prefs.Load(m.prefsPath).Theme; got != m.theme.Name {
		t.Fatalf("saved theme = %q, want %q", got, m.theme.Name)
	}
}

func TestFocusCycling(t *testing.T) {
	m := newTestModel(t, newFakeStorefront(fish.Inventory{}, nil))
	m = press(t, m, "tab")
	if m.focus != PaneOrder {
		t.Fatalf("focus = %v, want order", m.focus)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	if m.focus != PaneInventory {
		t.Fatalf("focus = %v, want inventory", m.focus)
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	m := newTestModel(t, newFakeStorefront(fish.Inventory{}, nil))
	m = press(t, m, "?")
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatal("help view missing title")
	}
	m = press(t, m, "j")
	if m.showHelp {
		t.Fatal("help still shown")
	}
}
