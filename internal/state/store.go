package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/catch/internal/fish"
)

// Snapshot represents the storefront data available to the UI.
type Snapshot struct {
	StoreID             string
	Fishes              fish.Inventory
	Order               fish.Order
	Synced              bool // first remote value received
	LastSynced          time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has failed several times in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Reset starts over for a store identity with the given hydrated order.
func (s *Store) Reset(storeID string, order fish.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = Snapshot{
		StoreID: storeID,
		Fishes:  fish.Inventory{},
		Order:   order.Clone(),
	}
}

// ReplaceFishes installs a full inventory received from the backend and marks
// the store as synced.
func (s *Store) ReplaceFishes(inv fish.Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Fishes = inv.Clone()
	s.snapshot.Synced = true
	s.snapshot.LastSynced = time.Now()
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// MutateFishes applies fn to the live inventory and returns a copy of the
// result.
func (s *Store) MutateFishes(fn func(inv fish.Inventory)) fish.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Fishes == nil {
		s.snapshot.Fishes = fish.Inventory{}
	}
	fn(s.snapshot.Fishes)
	return s.snapshot.Fishes.Clone()
}

// MutateOrder applies fn to the live order and returns a copy of the result.
func (s *Store) MutateOrder(fn func(order fish.Order)) fish.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Order == nil {
		s.snapshot.Order = fish.Order{}
	}
	fn(s.snapshot.Order)
	return s.snapshot.Order.Clone()
}

// RecordError notes a sync failure while keeping the previous data. A nil
// error marks a successful round trip and clears the failure count.
func (s *Store) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.snapshot.LastError = nil
		s.snapshot.ConsecutiveFailures = 0
		return
	}
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Synced reports whether the first remote value has arrived.
func (s *Store) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Synced
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Fishes = s.snapshot.Fishes.Clone()
	snap.Order = s.snapshot.Order.Clone()
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
