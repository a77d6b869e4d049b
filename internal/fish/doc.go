// Package fish defines the storefront's data model.
//
// # Records
//
// A Fish is one menu item. Prices are integer cents; FormatPrice and
// ParsePrice convert to and from the dollar strings shown in the UI.
//
// # Collections
//
// Inventory maps generated keys ("fish<unix-millis>") to records. The remote
// store deletes a key when its value is null, so a deleted fish is kept
// locally as a nil entry until the next sync replaces the inventory:
//
//	inv["fish1700000000000"] = nil // encodes as null
//
// Order maps fish keys to quantities. Callers keep every quantity at one or
// more; removing a line deletes the key.
//
// # Sample Catalog
//
// SampleFishes returns the nine-entry demo catalog keyed fish1..fish9.
package fish
