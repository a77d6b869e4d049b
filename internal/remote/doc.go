// Package remote defines the adapter between the storefront and a hosted
// realtime document tree.
//
// # Overview
//
// A Store exposes three operations the storefront relies on:
//
//   - Subscribe(path, onChange): mirror a subtree; onChange receives the full
//     subtree every time it changes, starting with the current value
//   - Unsubscribe(handle): stop mirroring; no callbacks after it returns
//   - Push(ctx, path, value): replace the subtree at path
//
// Fetch and Close round out the interface for the admin CLI and shutdown.
//
// # Deletion Convention
//
// Values are JSON trees. A null anywhere in a pushed value deletes that key,
// and objects left empty vanish, as in a realtime database:
//
//	store.Push(ctx, "grumpy-geese/fishes", fish.Inventory{"fish1": nil})
//
// Tree implements these semantics for backends that keep their own copy.
//
// # Backends
//
//   - firebase: Realtime Database REST and streaming API
//   - sqlite: self-hosted single-file store on modernc.org/sqlite
//   - memory: in-process tree for tests and offline demos
package remote
