// Package ui provides the Bubble Tea terminal storefront.
//
// The screen is a header (branding, store id, sync badge), a command bar and
// three panes side by side:
//
//   - Menu: the catalog. enter or a adds the selected fish to the order;
//     unavailable fish are marked Sold Out and cannot be added.
//   - Your Order: order lines joined against the inventory with the running
//     total. x removes the selected line.
//   - Inventory: n adds a fish, e edits, D deletes and S loads the sample
//     catalog.
//
// All data comes from Storefront.Snapshot. The storefront's change hook only
// signals a buffered channel; a waiting command turns that signal into a
// message so remote updates never block the sync goroutines. Store switches
// run as commands because they reconnect to the backend.
//
// Modals (fish form, store picker, recent log) implement Modal and receive
// all key input while open.
package ui
