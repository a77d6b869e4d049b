package fish

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Status is the availability of a fish on the menu.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// ParseStatus normalizes user input into a Status.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "available", "fresh":
		return StatusAvailable, nil
	case "unavailable", "sold out", "soldout":
		return StatusUnavailable, nil
	default:
		return "", fmt.Errorf("unknown status %q", value)
	}
}

// Fish is one inventory record as stored under <storeId>/fishes/<key>.
type Fish struct {
	Name   string `json:"name" yaml:"name"`
	Price  int    `json:"price" yaml:"price"` // cents
	Status Status `json:"status" yaml:"status"`
	Desc   string `json:"desc" yaml:"desc"`
	Image  string `json:"image" yaml:"image"`
}

// Available reports whether the fish can be ordered.
func (f Fish) Available() bool {
	return f.Status == StatusAvailable
}

// Inventory maps generated keys to fish records. A nil value is the deletion
// marker: it encodes as JSON null, which removes the key remotely.
type Inventory map[string]*Fish

// Clone returns a deep copy of the inventory, preserving deletion markers.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return Inventory{}
	}
	dup := make(Inventory, len(inv))
	for key, f := range inv {
		if f == nil {
			dup[key] = nil
			continue
		}
		c := *f
		dup[key] = &c
	}
	return dup
}

// Keys returns the keys in stable display order, deletion markers included.
func (inv Inventory) Keys() []string {
	keys := make([]string, 0, len(inv))
	for key := range inv {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Live returns the keys of records that are not deletion markers.
func (inv Inventory) Live() []string {
	keys := make([]string, 0, len(inv))
	for _, key := range inv.Keys() {
		if inv[key] != nil {
			keys = append(keys, key)
		}
	}
	return keys
}

// Merge copies every entry of other into inv, overwriting colliding keys.
func (inv Inventory) Merge(other Inventory) {
	for key, f := range other {
		if f == nil {
			inv[key] = nil
			continue
		}
		c := *f
		inv[key] = &c
	}
}

// DecodeInventory decodes a remote subtree. null or empty input yields an
// empty inventory.
func DecodeInventory(raw json.RawMessage) (Inventory, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Inventory{}, nil
	}
	var inv Inventory
	if err := json.Unmarshal(trimmed, &inv); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	if inv == nil {
		inv = Inventory{}
	}
	return inv, nil
}

// NewKey returns the time-based key for a fish added at t.
func NewKey(t time.Time) string {
	return "fish" + strconv.FormatInt(t.UnixMilli(), 10)
}

// Order maps fish keys to the quantity ordered. Quantities are always >= 1.
type Order map[string]int

// Clone returns a copy of the order.
func (o Order) Clone() Order {
	dup := make(Order, len(o))
	for key, qty := range o {
		dup[key] = qty
	}
	return dup
}

// Keys returns the order keys in stable display order.
func (o Order) Keys() []string {
	keys := make([]string, 0, len(o))
	for key := range o {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the total number of units ordered.
func (o Order) Count() int {
	total := 0
	for _, qty := range o {
		total += qty
	}
	return total
}

// Total sums price times quantity over order lines whose fish exists and is
// available. The result is in cents.
func Total(inv Inventory, order Order) int {
	total := 0
	for key, qty := range order {
		f := inv[key]
		if f == nil || !f.Available() {
			continue
		}
		total += qty * f.Price
	}
	return total
}
