package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maniraj26/VayuMitra.sky/internal/domain"
)

// mockRemote implements Remote with a tiny server-side cart so sync responses
// look like the real gateway's.
type mockRemote struct {
	mu     sync.Mutex
	items  []domain.CartItem
	prices map[string]float64
	total  *float64 // explicit server total; nil lets the client derive

	addErr    error
	updateErr error
	removeErr error
	clearErr  error
	getErr    error

	getBlock chan struct{} // when set, GetCart waits on it

	addCalls    int
	removeCalls int
	clearCalls  int
	nextID      int
}

func (m *mockRemote) GetCart(_ context.Context) (*domain.CartView, error) {
	if m.getBlock != nil {
		<-m.getBlock
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	items := make([]domain.CartItem, len(m.items))
	copy(items, m.items)
	return &domain.CartView{Items: items, TotalAmount: m.total}, nil
}

func (m *mockRemote) AddItem(_ context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	for i := range m.items {
		if m.items[i].ProductID == productID {
			m.items[i].Quantity += quantity
			return nil
		}
	}
	m.nextID++
	m.items = append(m.items, domain.CartItem{
		ItemID:    fmt.Sprintf("item-%d", m.nextID),
		ProductID: productID,
		Name:      productID,
		UnitPrice: m.prices[productID],
		Quantity:  quantity,
	})
	return nil
}

func (m *mockRemote) UpdateItem(_ context.Context, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.items {
		if m.items[i].ItemID == itemID {
			m.items[i].Quantity = quantity
		}
	}
	return nil
}

func (m *mockRemote) RemoveItem(_ context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++
	if m.removeErr != nil {
		return m.removeErr
	}
	for i := range m.items {
		if m.items[i].ItemID == itemID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRemote) ClearCart(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.items = nil
	return nil
}

func newMockRemote(prices map[string]float64) *mockRemote {
	return &mockRemote{prices: prices}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	remote := newMockRemote(nil)
	agg := NewAggregate(remote)

	for _, qty := range []int{0, -1} {
		err := agg.AddItem(context.Background(), "p1", qty)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	assert.Equal(t, 0, agg.ItemCount())
	assert.Equal(t, 0, remote.addCalls)
}

func TestAddItemUpsertsAndDerivesTotal(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 100, "p2": 50})
	agg := NewAggregate(remote)
	ctx := context.Background()

	require.NoError(t, agg.AddItem(ctx, "p1", 2))
	require.NoError(t, agg.AddItem(ctx, "p2", 1))
	require.NoError(t, agg.AddItem(ctx, "p1", 1))

	items := agg.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
	assert.InDelta(t, 350, agg.Total(), 1e-2)
}

func TestDerivedTotalMatchesItemSum(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 19.99, "p2": 5.25, "p3": 0})
	agg := NewAggregate(remote)
	ctx := context.Background()

	require.NoError(t, agg.AddItem(ctx, "p1", 3))
	require.NoError(t, agg.AddItem(ctx, "p2", 2))
	require.NoError(t, agg.AddItem(ctx, "p3", 5))
	require.NoError(t, agg.UpdateItem(ctx, agg.Items()[0].ItemID, 1))
	require.NoError(t, agg.RemoveItem(ctx, agg.Items()[1].ItemID))

	var sum float64
	for _, it := range agg.Items() {
		sum += it.Subtotal()
	}
	assert.InDelta(t, sum, agg.Total(), 1e-2)
}

func TestServerTotalWinsOverDerivedSum(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 100})
	authoritative := 180.0 // e.g. a server-side discount
	remote.total = &authoritative

	agg := NewAggregate(remote)
	require.NoError(t, agg.AddItem(context.Background(), "p1", 2))

	assert.InDelta(t, 180, agg.Total(), 1e-2)
}

func TestRemoveAbsentItemIsNoop(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 10})
	agg := NewAggregate(remote)
	ctx := context.Background()

	require.NoError(t, agg.AddItem(ctx, "p1", 1))
	before := agg.ItemCount()

	require.NoError(t, agg.RemoveItem(ctx, "no-such-item"))
	assert.Equal(t, before, agg.ItemCount())
	assert.Equal(t, 0, remote.removeCalls)
}

func TestUpdateWithZeroQuantityRemoves(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 10})
	agg := NewAggregate(remote)
	ctx := context.Background()

	require.NoError(t, agg.AddItem(ctx, "p1", 2))
	itemID := agg.Items()[0].ItemID

	require.NoError(t, agg.UpdateItem(ctx, itemID, 0))
	assert.Equal(t, 0, agg.ItemCount())
	assert.Equal(t, 1, remote.removeCalls)
}

func TestClearThenTotalIsZero(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 42})
	agg := NewAggregate(remote)
	ctx := context.Background()

	require.NoError(t, agg.AddItem(ctx, "p1", 3))
	require.NoError(t, agg.Clear(ctx))

	assert.Equal(t, 0, agg.ItemCount())
	assert.InDelta(t, 0, agg.Total(), 1e-2)

	// clearing again is a no-op, no second remote call
	require.NoError(t, agg.Clear(ctx))
	assert.Equal(t, 1, remote.clearCalls)
}

func TestRemoteFailureRollsBackOptimisticMutation(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 10})
	agg := NewAggregate(remote)
	ctx := context.Background()

	require.NoError(t, agg.AddItem(ctx, "p1", 1))
	before := agg.Items()

	remote.addErr = errors.New("gateway down")
	err := agg.AddItem(ctx, "p2", 1)
	require.Error(t, err)
	assert.Equal(t, before, agg.Items())
}

func TestStaleSyncResponseIsDiscarded(t *testing.T) {
	remote := newMockRemote(map[string]float64{"p1": 10})
	agg := NewAggregate(remote)
	ctx := context.Background()

	require.NoError(t, agg.AddItem(ctx, "p1", 2))

	// a refresh goes in flight, then the cart is cleared before the
	// response lands; the late response must not resurrect the items
	remote.getBlock = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- agg.Refresh(ctx) }()

	require.NoError(t, agg.Clear(ctx))
	close(remote.getBlock)
	require.NoError(t, <-done)

	assert.Equal(t, 0, agg.ItemCount())
	assert.InDelta(t, 0, agg.Total(), 1e-2)
}
