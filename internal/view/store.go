package view

import (
	"sync"

	"github.com/ankit-modi39/fi-inventory-management/internal/inventory"
)

// Snapshot is the complete in-memory product list for the currently displayed
// page, together with the page and size it was fetched with. It is replaced
// wholesale on every successful fetch, never merged with a prior snapshot.
type Snapshot struct {
	Products []inventory.Product
	Page     int
	Size     int
}

// Contains reports whether a product with the given id is in the snapshot.
func (s Snapshot) Contains(id string) bool {
	for _, p := range s.Products {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Find returns the product with the given id, if present.
func (s Snapshot) Find(id string) (inventory.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return inventory.Product{}, false
}

// Store is the in-memory mirror of one page of inventory. It never talks to
// the inventory service; callers mutate it only in response to a confirmed
// gateway response.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewStore creates an empty store positioned at page 1.
func NewStore(size int) *Store {
	return &Store{snap: Snapshot{Page: 1, Size: size}}
}

// Replace atomically swaps the entire snapshot.
func (s *Store) Replace(products []inventory.Product, page, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = Snapshot{Products: products, Page: page, Size: size}
}

// RemoveByID drops one product from the snapshot. No-op if absent.
func (s *Store) RemoveByID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.snap.Products {
		if p.ID == id {
			s.snap.Products = append(s.snap.Products[:i], s.snap.Products[i+1:]...)
			return
		}
	}
}

// PatchQuantity sets a single product's quantity. No-op if absent.
func (s *Store) PatchQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snap.Products {
		if s.snap.Products[i].ID == id {
			s.snap.Products[i].Quantity = quantity
			return
		}
	}
}

// Snapshot returns a copy of the current snapshot. The product slice is
// copied so callers cannot mutate the store through it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]inventory.Product, len(s.snap.Products))
	copy(products, s.snap.Products)
	return Snapshot{Products: products, Page: s.snap.Page, Size: s.snap.Size}
}

// Loaded reports whether a fetch has ever populated the store.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap.Products != nil
}

// Len returns the number of products in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.snap.Products)
}
