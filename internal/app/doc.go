// Package app is the composition root shared by catch and catch-admin.
//
// # Startup
//
//	Run()
//	  ├─> config.Load()        TOML config + env overrides
//	  ├─> OpenLogFile()        slog to ~/.local/share/catch/catch.log
//	  ├─> prefs.Load()         theme and last store
//	  ├─> Open()               remote backend + saved-order directory
//	  ├─> NewStorefront()      controller for the chosen store id
//	  ├─> Activate()           hydrate order, subscribe to <store>/fishes
//	  └─> ui.Run()             TUI (blocks until quit)
//
// # Backends
//
// OpenRemote maps database.backend to an implementation:
//
//   - firebase: realtime database REST client with streamed subscriptions
//   - sqlite:   local file shared between processes, polled for changes
//   - memory:   in-process tree, gone on exit
//
// # Error Handling
//
// Config, log file and backend failures are fatal and returned from Run. A
// failed first subscription is logged and shown in the header instead so the
// user can pick another store.
package app
