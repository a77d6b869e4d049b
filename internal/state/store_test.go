package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/catch/internal/fish"
)

func TestStore_ReplaceFishesAndSnapshotClone(t *testing.T) {
	var s Store
	s.Reset("shop", fish.Order{"fish1": 2})

	before := time.Now()
	s.ReplaceFishes(fish.Inventory{"fish1": {Name: "Lobster", Price: 3200}})

	snap := s.Snapshot()
	if snap.StoreID != "shop" || !snap.Synced {
		t.Fatalf("snapshot = %#v, want store shop and synced", snap)
	}
	if snap.LastSynced.Before(before) {
		t.Fatalf("LastSynced = %v, want >= %v", snap.LastSynced, before)
	}
	if got := snap.Fishes["fish1"]; got == nil || got.Price != 3200 {
		t.Fatalf("fish1 = %#v, want price 3200", got)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Fishes["fish1"].Price = 1
	snap.Order["fish1"] = 99
	snap2 := s.Snapshot()
	if snap2.Fishes["fish1"].Price != 3200 {
		t.Fatalf("Snapshot should clone fishes; got price %d", snap2.Fishes["fish1"].Price)
	}
	if snap2.Order["fish1"] != 2 {
		t.Fatalf("Snapshot should clone order; got qty %d", snap2.Order["fish1"])
	}
}

func TestStore_ResetClearsPreviousStore(t *testing.T) {
	var s Store
	s.Reset("one", nil)
	s.ReplaceFishes(fish.Inventory{"fish1": {Name: "Lobster"}})
	s.RecordError(errors.New("boom"))

	s.Reset("two", fish.Order{"fish4": 1})
	snap := s.Snapshot()
	if snap.StoreID != "two" || snap.Synced || len(snap.Fishes) != 0 || snap.LastError != nil {
		t.Fatalf("snapshot after reset = %#v", snap)
	}
	if snap.Order["fish4"] != 1 {
		t.Fatalf("order = %#v, want fish4:1", snap.Order)
	}
}

func TestStore_MutateReturnsCopies(t *testing.T) {
	var s Store

	inv := s.MutateFishes(func(inv fish.Inventory) {
		inv["fish1"] = &fish.Fish{Name: "Lobster"}
	})
	inv["fish1"].Name = "changed"
	if got := s.Snapshot().Fishes["fish1"].Name; got != "Lobster" {
		t.Fatalf("MutateFishes leaked live record; name = %q", got)
	}

	order := s.MutateOrder(func(o fish.Order) { o["fish1"]++ })
	order["fish1"] = 10
	if got := s.Snapshot().Order["fish1"]; got != 1 {
		t.Fatalf("MutateOrder leaked live order; qty = %d", got)
	}
}

func TestStore_RecordErrorKeepsPreviousData(t *testing.T) {
	var s Store
	s.ReplaceFishes(fish.Inventory{"fish1": {Name: "Lobster"}})

	origErr := errors.New("boom")
	s.RecordError(origErr)

	snap := s.Snapshot()
	if len(snap.Fishes) != 1 {
		t.Fatalf("fishes changed on error: %#v", snap.Fishes)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError = %v, want %v", snap.LastError, origErr)
	}
	if snap.LastError == origErr {
		t.Fatalf("LastError should be wrapped copy, got same pointer")
	}
}

func TestSnapshot_IsOffline(t *testing.T) {
	var s Store
	boom := errors.New("boom")

	s.RecordError(boom)
	if s.Snapshot().IsOffline() {
		t.Fatal("one failure should not be offline")
	}
	s.RecordError(boom)
	if !s.Snapshot().IsOffline() {
		t.Fatal("two consecutive failures should be offline")
	}
	s.RecordError(nil)
	if snap := s.Snapshot(); snap.IsOffline() || snap.LastError != nil {
		t.Fatalf("success should clear failures; got %#v", snap)
	}

	s.RecordError(boom)
	s.RecordError(boom)
	s.ReplaceFishes(nil)
	if s.Snapshot().IsOffline() {
		t.Fatal("remote value should clear failures")
	}
}

func TestStore_Synced(t *testing.T) {
	var s Store
	if s.Synced() {
		t.Fatal("zero store should not be synced")
	}
	s.ReplaceFishes(fish.Inventory{})
	if !s.Synced() {
		t.Fatal("store should be synced after ReplaceFishes")
	}
}
