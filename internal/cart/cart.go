// Package cart keeps the services a customer intends to book.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"salonbook/internal/catalog"
	"salonbook/internal/metrics"
)

// Resolver resolves a service id to its full record.
type Resolver interface {
	Get(ctx context.Context, id catalog.ID) (catalog.Service, error)
}

// Item is one service in the cart.
type Item struct {
	ID      catalog.ID      `json:"id"`
	Service catalog.Service `json:"service"`
}

// Cart holds at most one item per service id. Totals are derived from the items.
type Cart struct {
	resolver Resolver

	mu      sync.Mutex
	items   []Item
	pending map[catalog.ID]bool
	gen     uint64
	lastErr error
}

// New creates an empty cart.
func New(resolver Resolver) *Cart {
	return &Cart{
		resolver: resolver,
		pending:  make(map[catalog.ID]bool),
	}
}

// Add resolves id and appends it. It reports false without error when the
// service is already in the cart, an add for it is in flight, or the cart was
// cleared while it was resolving. On error the cart is unchanged.
func (c *Cart) Add(ctx context.Context, id catalog.ID) (bool, error) {
	c.mu.Lock()
	if c.indexOf(id) >= 0 || c.pending[id] {
		c.mu.Unlock()
		metrics.IncCartOperation("add", "duplicate")
		return false, nil
	}
	c.pending[id] = true
	gen := c.gen
	c.mu.Unlock()

	svc, err := c.resolver.Get(ctx, id)
	if err == nil {
		if svc.ID == "" {
			svc.ID = id
		}
		err = svc.Validate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		metrics.IncCartOperation("add", "discarded")
		return false, nil
	}
	delete(c.pending, id)

	if err != nil {
		c.lastErr = err
		metrics.IncCartOperation("add", "error")
		return false, fmt.Errorf("add service %s: %w", id, err)
	}

	c.items = append(c.items, Item{ID: id, Service: svc})
	c.lastErr = nil
	metrics.IncCartOperation("add", "ok")
	return true, nil
}

// Remove deletes the item with id. Removing an absent id is a no-op.
func (c *Cart) Remove(id catalog.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	metrics.IncCartOperation("remove", "ok")
	return true
}

// Clear empties the cart and discards adds still in flight.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.pending = make(map[catalog.ID]bool)
	c.gen++
	c.lastErr = nil
	metrics.IncCartOperation("clear", "ok")
}

// Items returns a copy of the items in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Contains reports whether id is in the cart.
func (c *Cart) Contains(id catalog.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexOf(id) >= 0
}

// Pending reports whether an add for id is resolving.
func (c *Cart) Pending(id catalog.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[id]
}

// Len returns the number of items.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Empty reports whether the cart has no items.
func (c *Cart) Empty() bool {
	return c.Len() == 0
}

// TotalPrice sums item prices.
func (c *Cart) TotalPrice() decimal.Decimal {
	return TotalPrice(c.Items())
}

// TotalDuration sums item durations in minutes.
func (c *Cart) TotalDuration() int {
	return TotalDuration(c.Items())
}

// Err returns the error of the last failed add.
func (c *Cart) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// TotalPrice sums the prices of items.
func TotalPrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Service.Price)
	}
	return total
}

// TotalDuration sums the durations of items.
func TotalDuration(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Service.Duration
	}
	return total
}

func (c *Cart) indexOf(id catalog.ID) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
