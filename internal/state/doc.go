// Package state holds the storefront state shared between backend callbacks
// and the UI.
//
// Remote change events arrive on backend goroutines while the UI renders from
// its own loop, so every access goes through a Store guarded by a
// sync.RWMutex. Readers always receive deep copies:
//
//	Backend goroutine:             UI:
//	┌────────────────────┐        ┌──────────────────┐
//	│ onChange(event)    │        │                  │
//	│      ↓             │        │                  │
//	│ store.ReplaceFishes│───────→│ store.Snapshot() │
//	└────────────────────┘ (mutex)│      ↓           │
//	                               │ render           │
//	                               └──────────────────┘
//
// Sync failures keep the last good inventory and are counted so the header
// can tell a transient error apart from being offline.
//
// The zero Store is ready to use.
package state
