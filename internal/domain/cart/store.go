// internal/domain/cart/store.go
package cart

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront/internal/localstore"
)

const storageKey = "cart"

// Store holds the shopper's cart. All mutations persist a snapshot to local
// storage; persistence failures are logged, never surfaced.
type Store struct {
	local  *localstore.Store
	logger *logrus.Entry

	mu    sync.RWMutex
	items []Item
}

// NewStore creates a cart store rehydrated from local storage.
func NewStore(local *localstore.Store, logger *logrus.Entry) *Store {
	s := &Store{
		local:  local,
		logger: logger,
	}
	var items []Item
	ok, err := local.Load(storageKey, &items)
	if err != nil {
		logger.WithError(err).Warn("failed to load cart from local storage")
	} else if ok {
		s.items = items
	}
	return s
}

// AddRequest describes a line to add to the cart.
type AddRequest struct {
	ProductID string
	Name      string
	Price     int64
	Image     string
	Size      string
	Quantity  int
}

// Add merges the request into the cart. An existing (ProductID, Size) line
// accumulates quantity; otherwise a new line is appended. A zero quantity
// defaults to one.
func (s *Store) Add(req AddRequest) error {
	if req.ProductID == "" {
		return fmt.Errorf("product id is required")
	}
	qty := req.Quantity
	if qty <= 0 {
		qty = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ProductID == req.ProductID && s.items[i].Size == req.Size {
			s.items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, Item{
			ProductID: req.ProductID,
			Name:      req.Name,
			Price:     req.Price,
			Image:     req.Image,
			Size:      req.Size,
			Quantity:  qty,
		})
	}
	s.mu.Unlock()

	s.persist()
	return nil
}

// Remove deletes the (productID, size) line. Removing an absent line is a
// no-op.
func (s *Store) Remove(productID, size string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID == productID && s.items[i].Size == size {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persist()
}

// SetQuantity overwrites the quantity of the (productID, size) line. A
// quantity of zero or less removes the line.
func (s *Store) SetQuantity(productID, size string, quantity int) {
	if quantity <= 0 {
		s.Remove(productID, size)
		return
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID == productID && s.items[i].Size == size {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()

	s.persist()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.persist()
}

// Items returns a copy of the cart lines.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalCount returns the sum of line quantities.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// Subtotal returns the sum of line subtotals.
func (s *Store) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

func (s *Store) persist() {
	s.mu.RLock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	s.mu.RUnlock()

	if err := s.local.Save(storageKey, items); err != nil {
		s.logger.WithError(err).Warn("failed to persist cart")
	}
}
