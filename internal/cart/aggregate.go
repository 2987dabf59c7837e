// Package cart holds the in-memory cart aggregate, kept in step with the
// remote cart resource. Every remote call is a suspend point: responses are
// applied only when the cart identity (epoch) is unchanged since the request
// was issued, so a late response for a cart that moved on is discarded.
package cart

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

// Remote is the slice of the gateway client the aggregate needs.
type Remote interface {
	GetCart(ctx context.Context) (*domain.CartView, error)
	AddItem(ctx context.Context, productID string, quantity int) error
	UpdateItem(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

type Aggregate struct {
	remote Remote

	mu          sync.Mutex
	items       []domain.CartItem
	serverTotal *float64
	epoch       uint64 // bumped on every local mutation

	sfg singleflight.Group // collapses concurrent refreshes
}

func NewAggregate(remote Remote) *Aggregate {
	return &Aggregate{remote: remote}
}

// AddItem upserts: an existing product line gets its quantity incremented, a
// new product is appended. The remote cart is updated and then re-synced.
func (a *Aggregate) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	a.mu.Lock()
	prev := copyItems(a.items)
	prevTotal := a.serverTotal
	found := false
	for i := range a.items {
		if a.items[i].ProductID == productID {
			a.items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		a.items = append(a.items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}
	a.serverTotal = nil // derived until the next sync
	a.epoch++
	e := a.epoch
	a.mu.Unlock()

	if err := a.remote.AddItem(ctx, productID, quantity); err != nil {
		a.restore(e, prev, prevTotal)
		return err
	}

	if err := a.syncAt(ctx, e); err != nil {
		log.Printf("cart refresh after add failed: %v", err)
	}
	return nil
}

// UpdateItem replaces the stored quantity. A quantity of zero or less is
// treated as removal.
func (a *Aggregate) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return a.RemoveItem(ctx, itemID)
	}

	a.mu.Lock()
	prev := copyItems(a.items)
	prevTotal := a.serverTotal
	for i := range a.items {
		if a.items[i].ItemID == itemID {
			a.items[i].Quantity = quantity
			break
		}
	}
	a.serverTotal = nil
	a.epoch++
	e := a.epoch
	a.mu.Unlock()

	if err := a.remote.UpdateItem(ctx, itemID, quantity); err != nil {
		a.restore(e, prev, prevTotal)
		return err
	}

	if err := a.syncAt(ctx, e); err != nil {
		log.Printf("cart refresh after update failed: %v", err)
	}
	return nil
}

// RemoveItem is idempotent: removing an id that is not in the cart is a no-op.
func (a *Aggregate) RemoveItem(ctx context.Context, itemID string) error {
	a.mu.Lock()
	idx := -1
	for i := range a.items {
		if a.items[i].ItemID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return nil
	}
	prev := copyItems(a.items)
	prevTotal := a.serverTotal
	a.items = append(a.items[:idx], a.items[idx+1:]...)
	a.serverTotal = nil
	a.epoch++
	e := a.epoch
	a.mu.Unlock()

	if err := a.remote.RemoveItem(ctx, itemID); err != nil {
		a.restore(e, prev, prevTotal)
		return err
	}

	if err := a.syncAt(ctx, e); err != nil {
		log.Printf("cart refresh after remove failed: %v", err)
	}
	return nil
}

// Clear empties the cart. Clearing an already-empty cart is a no-op, which
// keeps the post-payment clear idempotent.
func (a *Aggregate) Clear(ctx context.Context) error {
	a.mu.Lock()
	wasEmpty := len(a.items) == 0
	a.items = nil
	a.serverTotal = nil
	a.epoch++
	a.mu.Unlock()

	if wasEmpty {
		return nil
	}
	return a.remote.ClearCart(ctx)
}

// Refresh pulls the remote cart. Concurrent refreshes share one request.
func (a *Aggregate) Refresh(ctx context.Context) error {
	a.mu.Lock()
	e := a.epoch
	a.mu.Unlock()
	return a.syncAt(ctx, e)
}

// syncAt fetches the remote cart and applies it only if the local epoch still
// equals e. A stale response is logged and dropped, never an error.
func (a *Aggregate) syncAt(ctx context.Context, e uint64) error {
	v, err, _ := a.sfg.Do("cart", func() (interface{}, error) {
		return a.remote.GetCart(ctx)
	})
	if err != nil {
		return fmt.Errorf("cart sync: %w", err)
	}
	view := v.(*domain.CartView)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.epoch != e {
		log.Printf("cart: discarding stale sync response (epoch %d, now %d)", e, a.epoch)
		return nil
	}
	a.items = copyItems(view.Items)
	a.serverTotal = view.TotalAmount
	return nil
}

// restore undoes an optimistic mutation after a remote failure, unless the
// cart has moved on since.
func (a *Aggregate) restore(e uint64, items []domain.CartItem, total *float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.epoch != e {
		return
	}
	a.items = items
	a.serverTotal = total
	a.epoch++
}

// Items returns a read-only snapshot of the current line items.
func (a *Aggregate) Items() []domain.CartItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyItems(a.items)
}

func (a *Aggregate) ItemCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Total returns the server-supplied total from the last sync when present,
// otherwise the derived sum. The unrounded value is authoritative for
// comparison against payment amounts.
func (a *Aggregate) Total() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalLocked()
}

func (a *Aggregate) totalLocked() float64 {
	if a.serverTotal != nil {
		return *a.serverTotal
	}
	var sum float64
	for _, it := range a.items {
		sum += it.Subtotal()
	}
	if sum < 0 {
		return 0
	}
	return sum
}

// DisplayTotal rounds to two decimals for rendering.
func (a *Aggregate) DisplayTotal() float64 {
	return math.Round(a.Total()*100) / 100
}

// Snapshot captures an immutable copy of the cart for order creation.
func (a *Aggregate) Snapshot() domain.CartSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.CartSnapshot{
		Items:       copyItems(a.items),
		TotalAmount: a.totalLocked(),
		CapturedAt:  time.Now(),
	}
}

func copyItems(items []domain.CartItem) []domain.CartItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
