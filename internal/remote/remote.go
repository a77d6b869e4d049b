package remote

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrClosed is returned by operations on a closed backend.
	ErrClosed = errors.New("remote store closed")
	// ErrPermission reports that the backend refused access to a path.
	ErrPermission = errors.New("remote permission denied")
)

// Event is delivered to subscribers whenever the watched subtree changes.
// Data holds the full JSON value of the subtree ("null" when absent). When Err
// is set the event reports a backend failure and Data is empty.
type Event struct {
	Path string
	Data json.RawMessage
	Err  error
}

// ChangeFunc receives subscription events. Calls for one subscription are
// never concurrent.
type ChangeFunc func(Event)

// Subscription identifies a live listener.
type Subscription struct {
	id   string
	path string
}

// NewSubscription allocates a handle for path.
func NewSubscription(path string) Subscription {
	return Subscription{id: uuid.NewString(), path: CleanPath(path)}
}

// ID returns the unique handle id.
func (s Subscription) ID() string { return s.id }

// Path returns the watched path.
func (s Subscription) Path() string { return s.path }

// Valid reports whether the handle was issued by NewSubscription.
func (s Subscription) Valid() bool { return s.id != "" }

// Store is a hosted realtime document tree. Push uses set semantics: the
// subtree at path is replaced and null values delete keys.
type Store interface {
	Subscribe(path string, onChange ChangeFunc) (Subscription, error)
	Unsubscribe(sub Subscription) error
	Push(ctx context.Context, path string, value any) error
	Fetch(ctx context.Context, path string) (json.RawMessage, error)
	Close() error
}
