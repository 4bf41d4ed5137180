package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ankit-modi39/fi-inventory-management/internal/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway is a mock implementation of the Gateway interface.
type mockGateway struct {
	mu          sync.Mutex
	listFn      func(ctx context.Context, page, size int) ([]inventory.Product, error)
	updateErr   error
	deleteErr   error
	createErr   error
	listCalls   []int
	updateCalls map[string]int
	deleteCalls []string
}

func newMockGateway(listFn func(ctx context.Context, page, size int) ([]inventory.Product, error)) *mockGateway {
	return &mockGateway{
		listFn:      listFn,
		updateCalls: make(map[string]int),
	}
}

func (m *mockGateway) ListProducts(ctx context.Context, page, size int) ([]inventory.Product, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, page)
	fn := m.listFn
	m.mu.Unlock()
	return fn(ctx, page, size)
}

func (m *mockGateway) CreateProduct(_ context.Context, product inventory.ProductCreate) (*inventory.Product, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &inventory.Product{ID: "created", Name: product.Name, SKU: product.SKU}, nil
}

func (m *mockGateway) UpdateQuantity(_ context.Context, id string, quantity int) (*inventory.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updateCalls[id] = quantity
	return &inventory.Product{ID: id, Quantity: quantity}, nil
}

func (m *mockGateway) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleteCalls = append(m.deleteCalls, id)
	return nil
}

func (m *mockGateway) listedPages() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages := make([]int, len(m.listCalls))
	copy(pages, m.listCalls)
	return pages
}

func makeProducts(prefix string, n int) []inventory.Product {
	products := make([]inventory.Product, n)
	for i := range products {
		products[i] = inventory.Product{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Name:     fmt.Sprintf("Product %s-%d", prefix, i),
			SKU:      fmt.Sprintf("SKU-%s-%d", prefix, i),
			Quantity: 20,
			Price:    decimal.RequireFromString("5.00"),
		}
	}
	return products
}

func staticList(products []inventory.Product) func(context.Context, int, int) ([]inventory.Product, error) {
	return func(_ context.Context, _, _ int) ([]inventory.Product, error) {
		return products, nil
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func Test_Controller_LoadPage(t *testing.T) {
	// given
	gw := newMockGateway(staticList(makeProducts("a", 3)))
	c := NewController(gw, 10, testLogger())

	// when
	err := c.LoadPage(context.Background())

	// then
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 10, snap.Size)
	assert.Len(t, snap.Products, 3)
	assert.Equal(t, []int{1}, gw.listedPages())
}

func Test_Controller_LoadPageFailureKeepsSnapshot(t *testing.T) {
	// given: a loaded page
	gw := newMockGateway(staticList(makeProducts("a", 3)))
	c := NewController(gw, 10, testLogger())
	require.NoError(t, c.LoadPage(context.Background()))
	before := c.Snapshot()

	// when: the next fetch fails
	fetchErr := errors.New("connection refused")
	gw.listFn = func(_ context.Context, _, _ int) ([]inventory.Product, error) {
		return nil, fetchErr
	}
	err := c.LoadPage(context.Background())

	// then: the error surfaces and the prior snapshot is intact
	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, before, c.Snapshot())
}

func Test_Controller_StaleResponseIsDiscarded(t *testing.T) {
	// given: a full page 1 so the cursor can advance
	pageOne := makeProducts("one", 10)
	pageTwo := makeProducts("two", 4)
	release := make(chan struct{})
	started := make(chan struct{})
	var startOnce sync.Once

	gw := newMockGateway(func(_ context.Context, page, _ int) ([]inventory.Product, error) {
		if page == 1 {
			startOnce.Do(func() { close(started) })
			<-release
			return pageOne, nil
		}
		return pageTwo, nil
	})
	c := NewController(gw, 10, testLogger())
	c.store.Replace(pageOne, 1, 10)

	// when: a page-1 fetch is in flight while the user paginates to page 2
	done := make(chan error, 1)
	go func() { done <- c.LoadPage(context.Background()) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("page-1 fetch was never issued")
	}

	page, err := c.AdvancePage(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, page)

	close(release)
	require.NoError(t, <-done)

	// then: the late page-1 response did not overwrite the page-2 snapshot
	snap := c.Snapshot()
	assert.Equal(t, 2, snap.Page)
	require.Len(t, snap.Products, 4)
	assert.Equal(t, "two-0", snap.Products[0].ID)
}

func Test_Controller_AdvancePageNoPhantomNext(t *testing.T) {
	// given: the last fetch returned fewer products than the page size
	gw := newMockGateway(staticList(makeProducts("a", 7)))
	c := NewController(gw, 10, testLogger())
	require.NoError(t, c.LoadPage(context.Background()))

	// when
	page, err := c.AdvancePage(context.Background())

	// then: the page did not change, the listing was still refreshed
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, []int{1, 1}, gw.listedPages())
}

func Test_Controller_RetreatPageFlooredAtOne(t *testing.T) {
	gw := newMockGateway(staticList(makeProducts("a", 3)))
	c := NewController(gw, 10, testLogger())

	page, err := c.RetreatPage(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, page)
}

func Test_Controller_DeleteProduct(t *testing.T) {
	t.Run("Requires confirmation", func(t *testing.T) {
		// given
		gw := newMockGateway(staticList(makeProducts("a", 3)))
		c := NewController(gw, 10, testLogger())
		// when
		err := c.DeleteProduct(context.Background(), "a-0", false)
		// then: nothing was sent to the gateway
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.Empty(t, gw.deleteCalls)
	})

	t.Run("Gateway failure leaves the snapshot unchanged", func(t *testing.T) {
		// given
		gw := newMockGateway(staticList(makeProducts("a", 3)))
		c := NewController(gw, 10, testLogger())
		require.NoError(t, c.LoadPage(context.Background()))
		before := c.Snapshot()
		gw.deleteErr = errors.New("boom")
		// when
		err := c.DeleteProduct(context.Background(), "a-0", true)
		// then
		assert.Error(t, err)
		assert.Equal(t, before, c.Snapshot())
	})

	t.Run("Success removes the row and re-fetches", func(t *testing.T) {
		// given
		remaining := makeProducts("a", 3)
		gw := newMockGateway(nil)
		gw.listFn = func(_ context.Context, _, _ int) ([]inventory.Product, error) {
			return remaining, nil
		}
		c := NewController(gw, 10, testLogger())
		require.NoError(t, c.LoadPage(context.Background()))
		remaining = remaining[1:] // the service no longer returns the deleted row
		// when
		err := c.DeleteProduct(context.Background(), "a-0", true)
		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"a-0"}, gw.deleteCalls)
		assert.False(t, c.Snapshot().Contains("a-0"))
		assert.Equal(t, []int{1, 1}, gw.listedPages())
	})
}

func Test_Controller_StartEdit(t *testing.T) {
	// given
	products := makeProducts("a", 3)
	products[1].Quantity = 7
	gw := newMockGateway(staticList(products))
	c := NewController(gw, 10, testLogger())
	require.NoError(t, c.LoadPage(context.Background()))

	// when / then: editing a visible row seeds the pending text
	require.NoError(t, c.StartEdit("a-1"))
	id, pending, active := c.EditState()
	assert.True(t, active)
	assert.Equal(t, "a-1", id)
	assert.Equal(t, "7", pending)

	// editing an invisible row is rejected
	assert.ErrorIs(t, c.StartEdit("nope"), ErrRowNotVisible)
}

func Test_Controller_CommitEdit(t *testing.T) {
	testCases := []struct {
		name          string
		pendingText   string
		expectErr     error
		expectUpdated bool
	}{
		{
			name:          "Valid text is committed",
			pendingText:   "12",
			expectUpdated: true,
		},
		{
			name:        "Unparsable text is rejected locally",
			pendingText: "a dozen",
			expectErr:   ErrInvalidQuantity,
		},
		{
			name:        "Negative text is rejected locally",
			pendingText: "-4",
			expectErr:   ErrInvalidQuantity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			gw := newMockGateway(staticList(makeProducts("a", 3)))
			c := NewController(gw, 10, testLogger())
			require.NoError(t, c.LoadPage(context.Background()))
			require.NoError(t, c.StartEdit("a-0"))
			require.NoError(t, c.UpdateEditText("a-0", tc.pendingText))

			// when
			err := c.CommitEdit(context.Background())

			// then
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				assert.Empty(t, gw.updateCalls)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 12, gw.updateCalls["a-0"])
			}
			// the session closes after every commit attempt
			_, _, active := c.EditState()
			assert.False(t, active)
		})
	}
}

func Test_Controller_CommitEditWithoutActiveEdit(t *testing.T) {
	gw := newMockGateway(staticList(makeProducts("a", 1)))
	c := NewController(gw, 10, testLogger())

	assert.ErrorIs(t, c.CommitEdit(context.Background()), ErrNoActiveEdit)
}

func Test_Controller_CommitQuantityRoundTrip(t *testing.T) {
	// given: a gateway whose listing reflects committed updates
	products := makeProducts("a", 3)
	gw := newMockGateway(nil)
	gw.listFn = func(_ context.Context, _, _ int) ([]inventory.Product, error) {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		out := make([]inventory.Product, len(products))
		copy(out, products)
		for i := range out {
			if q, ok := gw.updateCalls[out[i].ID]; ok {
				out[i].Quantity = q
			}
		}
		return out, nil
	}
	c := NewController(gw, 10, testLogger())
	require.NoError(t, c.LoadPage(context.Background()))

	// when
	require.NoError(t, c.CommitQuantity(context.Background(), "a-2", 55))

	// then: the re-fetched snapshot carries exactly the committed quantity
	p, ok := c.Snapshot().Find("a-2")
	require.True(t, ok)
	assert.Equal(t, 55, p.Quantity)
}

func Test_Controller_CommitQuantityFailureKeepsSnapshot(t *testing.T) {
	// given
	gw := newMockGateway(staticList(makeProducts("a", 3)))
	c := NewController(gw, 10, testLogger())
	require.NoError(t, c.LoadPage(context.Background()))
	before := c.Snapshot()
	gw.updateErr = errors.New("boom")

	// when
	err := c.CommitQuantity(context.Background(), "a-0", 5)

	// then
	assert.Error(t, err)
	assert.Equal(t, before, c.Snapshot())
}

func Test_Controller_EditDroppedWhenRowLeavesSnapshot(t *testing.T) {
	// given: an active edit on a row the service stops returning
	products := makeProducts("a", 3)
	gw := newMockGateway(nil)
	gw.listFn = func(_ context.Context, _, _ int) ([]inventory.Product, error) {
		return products, nil
	}
	c := NewController(gw, 10, testLogger())
	require.NoError(t, c.LoadPage(context.Background()))
	require.NoError(t, c.StartEdit("a-1"))
	products = []inventory.Product{products[0], products[2]}

	// when
	require.NoError(t, c.LoadPage(context.Background()))

	// then
	_, _, active := c.EditState()
	assert.False(t, active)
}

func Test_Controller_Stats(t *testing.T) {
	// given
	products := []inventory.Product{
		{ID: "a", Quantity: 3, Price: decimal.RequireFromString("10.00")},
		{ID: "b", Quantity: 2, Price: decimal.RequireFromString("2.50")},
		{ID: "c", Quantity: 15, Price: decimal.RequireFromString("1.00")},
	}
	gw := newMockGateway(staticList(products))
	c := NewController(gw, 10, testLogger())
	require.NoError(t, c.LoadPage(context.Background()))

	// when
	stats := c.Stats()

	// then
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.LowStock)
	assert.True(t, stats.TotalValue.Equal(decimal.RequireFromString("50.00")))
}

func Test_Controller_Overview(t *testing.T) {
	// given
	gw := newMockGateway(staticList(makeProducts("a", 8)))
	c := NewController(gw, 10, testLogger())

	// when
	overview, err := c.Overview(context.Background())

	// then: aggregates over the whole fetch, recent capped at five
	require.NoError(t, err)
	assert.Equal(t, 8, overview.Stats.TotalProducts)
	assert.Len(t, overview.Recent, 5)
	// the paginated snapshot is untouched
	assert.False(t, c.Loaded())
}
