// Package firebase implements remote.Store against a Firebase Realtime
// Database using its REST API: PUT and GET for writes and reads, and the
// server-sent-events stream for subscriptions.
package firebase
