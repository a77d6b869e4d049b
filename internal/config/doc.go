// Package config loads the catch configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/catch/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or empty, use defaults
//  5. CATCH_DATABASE_URL and CATCH_DATABASE_AUTH override the file
//
// Paths starting with ~ are expanded against the user's home directory.
//
// # Default Values
//
//   - Backend: sqlite at ~/.local/share/catch/catch.db, polled every second
//   - Saved orders: ~/.local/share/catch/orders
//   - Log file: ~/.local/share/catch/catch.log (info, text)
//
// # TOML Format
//
//	[database]
//	backend = "firebase"
//	url = "https://catch-of-the-day-1234.firebaseio.com"
//	auth = ""
//
//	[orders]
//	dir = "~/.local/share/catch/orders"
//
//	[log]
//	level = "debug"
//	format = "json"
//
// # Error Handling
//
// A missing file is not an error. Unreadable files, TOML syntax errors, bad
// durations and unknown backend or log format names are returned so the
// program can refuse to start.
package config
