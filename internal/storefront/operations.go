package storefront

import "github.com/five82/catch/internal/fish"

// AddFish stores f under a new time-based key. Two adds within the same
// millisecond collide; the second is dropped and reported with added=false.
func (c *Controller) AddFish(f fish.Fish) (key string, added bool) {
	key = fish.NewKey(c.clock())
	c.mutateFishes(func(inv fish.Inventory) {
		if _, exists := inv[key]; exists {
			return
		}
		inv[key] = &f
		added = true
	})
	if !added {
		c.logger.Debug("fish key collision", "key", key)
	}
	return key, added
}

// UpdateFish replaces the record at key with f.
func (c *Controller) UpdateFish(key string, f fish.Fish) {
	c.mutateFishes(func(inv fish.Inventory) {
		inv[key] = &f
	})
}

// DeleteFish sets key to the deletion marker. The entry disappears locally
// once the remote store reports the deletion.
func (c *Controller) DeleteFish(key string) {
	c.mutateFishes(func(inv fish.Inventory) {
		inv[key] = nil
	})
}

// LoadSampleFishes merges the sample catalog into the inventory, overwriting
// entries with the same keys.
func (c *Controller) LoadSampleFishes() {
	c.mutateFishes(func(inv fish.Inventory) {
		inv.Merge(fish.SampleFishes())
	})
}

// AddToOrder increments the quantity of key, starting at 1.
func (c *Controller) AddToOrder(key string) {
	order := c.state.MutateOrder(func(o fish.Order) {
		o[key]++
	})
	c.saveOrder(c.StoreID(), order)
	c.changed()
}

// RemoveFromOrder deletes key from the order.
func (c *Controller) RemoveFromOrder(key string) {
	order := c.state.MutateOrder(func(o fish.Order) {
		delete(o, key)
	})
	c.saveOrder(c.StoreID(), order)
	c.changed()
}
