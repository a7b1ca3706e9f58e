// internal/domain/wishlist/store.go
package wishlist

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront/internal/localstore"
	"github.com/your-org/storefront/internal/remote"
)

// Collection is the remote collection holding one wishlist document per user.
const Collection = "wishlists"

const storageKey = "wishlist"

// Store holds the shopper's wishlist. Mutations apply locally first and then
// write the whole document through to the remote collection in the
// background. Remote write failures are logged, never surfaced; the local
// state stays authoritative until the next fetch.
type Store struct {
	col    remote.Collection
	local  *localstore.Store
	logger *logrus.Entry

	mu     sync.RWMutex
	userID string
	items  []Item

	wg sync.WaitGroup
}

// NewStore creates a wishlist store rehydrated from local storage.
func NewStore(svc remote.Service, local *localstore.Store, logger *logrus.Entry) *Store {
	s := &Store{
		col:    svc.Collection(Collection),
		local:  local,
		logger: logger,
	}
	var items []Item
	ok, err := local.Load(storageKey, &items)
	if err != nil {
		logger.WithError(err).Warn("failed to load wishlist from local storage")
	} else if ok {
		s.items = items
	}
	return s
}

// Fetch loads the user's wishlist document and replaces the local state. A
// missing document means the user has no wishlist yet and yields an empty
// list without error.
func (s *Store) Fetch(ctx context.Context, userID string) ([]Item, error) {
	var payload document
	if err := s.col.Get(ctx, userID, &payload); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			s.replace(userID, nil)
			return []Item{}, nil
		}
		return nil, err
	}

	s.replace(userID, payload.Items)
	return s.Items(), nil
}

// Add saves the item locally and syncs the document in the background.
// Adding an already saved product is a no-op.
func (s *Store) Add(item Item) {
	s.mu.Lock()
	for _, it := range s.items {
		if it.ProductID == item.ProductID {
			s.mu.Unlock()
			return
		}
	}
	s.items = append(s.items, item)
	s.mu.Unlock()

	s.persist()
	s.sync()
}

// Remove drops the product locally and syncs the document in the background.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persist()
	s.sync()
}

// IsWishlisted reports whether the product is saved.
func (s *Store) IsWishlisted(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Items returns a copy of the saved items.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Flush waits for in-flight remote writes. Call before shutdown.
func (s *Store) Flush() {
	s.wg.Wait()
}

func (s *Store) replace(userID string, items []Item) {
	s.mu.Lock()
	s.userID = userID
	s.items = items
	s.mu.Unlock()
	s.persist()
}

func (s *Store) persist() {
	s.mu.RLock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	s.mu.RUnlock()

	if err := s.local.Save(storageKey, items); err != nil {
		s.logger.WithError(err).Warn("failed to persist wishlist")
	}
}

// sync writes the whole document for the signed-in user. Last write wins.
func (s *Store) sync() {
	s.mu.RLock()
	userID := s.userID
	payload := document{Items: make([]Item, len(s.items))}
	copy(payload.Items, s.items)
	s.mu.RUnlock()

	if userID == "" {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.col.Set(context.Background(), userID, payload, false); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to sync wishlist")
		}
	}()
}
