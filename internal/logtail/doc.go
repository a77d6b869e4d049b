// Package logtail reads the tail of the catch log file.
//
// Read returns the last N raw lines using a ring buffer, so large files are
// scanned once without being held in memory. Tail parses each line written by
// slog's text or JSON handler into an Entry and filters by level; the UI log
// overlay and catch-admin logs both use it.
//
// Lines that are not slog output are returned as INFO entries whose message is
// the whole line.
package logtail
