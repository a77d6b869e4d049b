// Package memory provides an in-process remote.Store. Notifications are
// delivered synchronously from the goroutine that pushed the change.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/five82/catch/internal/remote"
)

// Store is an in-memory realtime tree.
type Store struct {
	// notifyMu orders deliveries so subscribers observe pushes in sequence.
	// Callbacks must not call Subscribe, Unsubscribe or Push on the same store.
	notifyMu sync.Mutex

	mu      sync.Mutex
	tree    *remote.Tree
	subs    map[string]*subscriber
	pushErr error
	pushes  int
	closed  bool
}

type subscriber struct {
	sub  remote.Subscription
	fn   remote.ChangeFunc
	last string
}

var _ remote.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	tree, _ := remote.NewTree(nil)
	return &Store{tree: tree, subs: make(map[string]*subscriber)}
}

// NewWithData returns a store seeded from a JSON document.
func NewWithData(raw json.RawMessage) (*Store, error) {
	tree, err := remote.NewTree(raw)
	if err != nil {
		return nil, fmt.Errorf("memory store: %w", err)
	}
	return &Store{tree: tree, subs: make(map[string]*subscriber)}, nil
}

// Subscribe registers onChange and delivers the current value before returning.
func (s *Store) Subscribe(path string, onChange remote.ChangeFunc) (remote.Subscription, error) {
	if onChange == nil {
		return remote.Subscription{}, fmt.Errorf("memory store: onChange is required")
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return remote.Subscription{}, remote.ErrClosed
	}
	sub := remote.NewSubscription(path)
	entry := &subscriber{sub: sub, fn: onChange}
	s.subs[sub.ID()] = entry
	data := s.tree.GetJSON(sub.Path())
	entry.last = string(data)
	s.mu.Unlock()

	onChange(remote.Event{Path: sub.Path(), Data: data})
	return sub, nil
}

// Unsubscribe removes the listener. Unknown handles are ignored.
func (s *Store) Unsubscribe(sub remote.Subscription) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub.ID())
	return nil
}

// Push replaces the subtree at path and notifies affected subscribers.
func (s *Store) Push(ctx context.Context, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	node, err := remote.Normalize(value)
	if err != nil {
		return fmt.Errorf("memory store: %w", err)
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return remote.ErrClosed
	}
	if s.pushErr != nil {
		err := s.pushErr
		s.mu.Unlock()
		return err
	}
	s.tree.Set(path, node)
	s.pushes++

	type delivery struct {
		fn    remote.ChangeFunc
		event remote.Event
	}
	var pending []delivery
	for _, entry := range s.subs {
		data := s.tree.GetJSON(entry.sub.Path())
		if string(data) == entry.last {
			continue
		}
		entry.last = string(data)
		pending = append(pending, delivery{
			fn:    entry.fn,
			event: remote.Event{Path: entry.sub.Path(), Data: data},
		})
	}
	s.mu.Unlock()

	for _, d := range pending {
		d.fn(d.event)
	}
	return nil
}

// Fetch returns the current value at path.
func (s *Store) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, remote.ErrClosed
	}
	return s.tree.GetJSON(path), nil
}

// Close drops all subscriptions; later calls fail with remote.ErrClosed.
func (s *Store) Close() error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[string]*subscriber)
	return nil
}

// SetPushError makes subsequent pushes fail with err; nil restores normal
// behavior.
func (s *Store) SetPushError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushErr = err
}

// Fail delivers err to every subscriber, as a dropped connection would, and
// forgets the last value each one saw.
func (s *Store) Fail(err error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	entries := make([]*subscriber, 0, len(s.subs))
	for _, entry := range s.subs {
		entries = append(entries, entry)
	}
	s.mu.Unlock()

	for _, entry := range entries {
		s.mu.Lock()
		entry.last = ""
		s.mu.Unlock()
		entry.fn(remote.Event{Path: entry.sub.Path(), Err: err})
	}
}

// Pushes returns the number of successful pushes.
func (s *Store) Pushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushes
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
