// Package storefront implements the store controller: it owns the inventory
// and the customer's order for one store, mirrors the inventory to the
// remote store under <storeId>/fishes and remembers the order locally.
//
// # Lifetime
//
// A Controller is created for a store id and does nothing until Activate.
// Activate hydrates the order from the persistence shim and subscribes to the
// remote subtree. Deactivate flushes any pending push and releases the
// subscription. SwitchStore does both for a new id.
//
// # Sync
//
// Remote changes replace the local inventory in full. Local inventory
// mutations are applied immediately and then pushed as a whole by a single
// background worker, so a burst of edits results in one write of the latest
// inventory. Remote values that arrive while local edits are still unpushed
// are held until the push completes, then applied. Deleted fish are kept locally as nil markers until the next
// remote value drops them. Pushes wait for the first remote value so that a
// store opened offline never overwrites the remote catalog with an empty one;
// mutations made before that are replaced by the remote value when it
// arrives.
//
// # Threading
//
// Remote callbacks run on backend goroutines. All state lives in a
// state.Store and the UI reads copies through Snapshot. The Notify hook is
// called after every change and must not block.
package storefront
