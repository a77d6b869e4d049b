package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Logs       key.Binding
	PickStore  key.Binding

	// Pane shortcuts
	FocusMenu      key.Binding
	FocusOrder     key.Binding
	FocusInventory key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Menu and order
	AddToOrder key.Binding
	Remove     key.Binding

	// Inventory
	NewFish     key.Binding
	EditFish    key.Binding
	DeleteFish  key.Binding
	LoadSamples key.Binding

	// Forms
	Confirm   key.Binding
	NextField key.Binding
	PrevField key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next pane"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Recent log"),
		),
		PickStore: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Switch store"),
		),

		FocusMenu: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Menu"),
		),
		FocusOrder: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Order"),
		),
		FocusInventory: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Inventory"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		AddToOrder: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("a/enter", "Add to order"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Remove from order"),
		),

		NewFish: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New fish"),
		),
		EditFish: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "Edit fish"),
		),
		DeleteFish: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Delete fish"),
		),
		LoadSamples: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Load sample fishes"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Save"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.FocusMenu, k.FocusOrder, k.FocusInventory},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.AddToOrder, k.Remove},
		{k.NewFish, k.EditFish, k.DeleteFish, k.LoadSamples},
		{k.PickStore, k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
