// Package cart keeps the shopping cart in the browser session as a mapping
// product id → quantity under the "carrinho" key.
package cart

import (
	"sort"
	"strconv"
)

// SessionKey is the session entry holding the cart.
const SessionKey = "carrinho"

// Store is the slice of the session the cart needs. *session.Session
// satisfies it.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Delete(key string)
}

// Cart is a view over one session's cart entry. It holds no state of its
// own: every method reads or writes the store.
type Cart struct {
	store Store
}

func New(store Store) *Cart {
	return &Cart{store: store}
}

// Entries returns a fresh copy of the mapping. Ids are stored as strings,
// matching the JSON form the session store persists.
func (c *Cart) Entries() map[uint]int {
	out := map[uint]int{}

	raw, ok := c.store.Get(SessionKey)
	if !ok {
		return out
	}

	switch m := raw.(type) {
	case map[string]int:
		for k, qty := range m {
			put(out, k, qty)
		}
	case map[string]interface{}:
		for k, v := range m {
			switch q := v.(type) {
			case float64:
				put(out, k, int(q))
			case int:
				put(out, k, q)
			}
		}
	}
	return out
}

func put(out map[uint]int, key string, qty int) {
	id, err := strconv.ParseUint(key, 10, 64)
	if err != nil || id == 0 || qty <= 0 {
		return
	}
	out[uint(id)] = qty
}

// Add increments the quantity of productID by one and returns the new
// quantity.
func (c *Cart) Add(productID uint) int {
	entries := c.Entries()
	entries[productID]++
	c.save(entries)
	return entries[productID]
}

// IDs returns the product ids in ascending order.
func (c *Cart) IDs() []uint {
	entries := c.Entries()
	ids := make([]uint, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *Cart) IsEmpty() bool { return len(c.Entries()) == 0 }

// Clear stores an empty mapping, so the session records the change.
func (c *Cart) Clear() {
	c.store.Set(SessionKey, map[string]int{})
}

// Raw returns the mapping in its stored shape, for API responses.
func (c *Cart) Raw() map[string]int {
	out := map[string]int{}
	for id, qty := range c.Entries() {
		out[strconv.FormatUint(uint64(id), 10)] = qty
	}
	return out
}

func (c *Cart) save(entries map[uint]int) {
	stored := make(map[string]int, len(entries))
	for id, qty := range entries {
		stored[strconv.FormatUint(uint64(id), 10)] = qty
	}
	c.store.Set(SessionKey, stored)
}
