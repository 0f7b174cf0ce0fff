package cart

import "errors"

var ErrQuantity = errors.New("quantity must be at least 1")

// Cart is an insertion-ordered set of line items keyed by LineItem.Key().
// Quantities are always >= 1; deleting a key removes the entry wholesale, so
// zero-quantity entries never exist.
type Cart struct {
	items map[string]*LineItem
	order []string
}

func New() *Cart {
	return &Cart{items: map[string]*LineItem{}}
}

// Select merges the item into the cart: an existing key gets its quantity
// increased by item.Qty, a new key is appended.
func (c *Cart) Select(item LineItem) error {
	if item.Qty < 1 {
		return ErrQuantity
	}
	key := item.Key()
	if existing, ok := c.items[key]; ok {
		existing.Qty += item.Qty
		return nil
	}
	li := item
	c.items[key] = &li
	c.order = append(c.order, key)
	return nil
}

// Delete removes the entry unconditionally; an absent key is a no-op.
func (c *Cart) Delete(key string) {
	if _, ok := c.items[key]; !ok {
		return
	}
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Items returns the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, *c.items[k])
	}
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) Clear() {
	c.items = map[string]*LineItem{}
	c.order = nil
}
