// internal/domain/product/store.go
package product

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/remote"
)

// Collection is the remote collection holding product documents.
const Collection = "products"

var (
	// ErrNotFound is returned for lookups of products absent from the cache.
	ErrNotFound = errors.New("product not found")
	// ErrAdminRequired gates the product-management operations.
	ErrAdminRequired = errors.New("admin session required")
)

// Store is the cached, push-synchronized view of the product catalog.
type Store struct {
	col    remote.Collection
	config *config.Config
	logger *logrus.Entry

	mu       sync.RWMutex
	products []Product
	loading  bool
	lastGen  uint64

	subMu    sync.Mutex
	sub      remote.Subscription
	retrying bool
	cancel   context.CancelFunc
}

// NewStore creates a product store over the remote catalog collection.
func NewStore(svc remote.Service, cfg *config.Config, logger *logrus.Logger) *Store {
	return &Store{
		col:     svc.Collection(Collection),
		config:  cfg,
		logger:  logger.WithField("store", "product"),
		loading: true,
	}
}

// Subscribe establishes the single live subscription to the catalog, ordered
// by creation time descending. Calling it while a subscription is active is a
// no-op. A failing subscription is retried with backoff; there is never more
// than one live listener.
func (s *Store) Subscribe(ctx context.Context) error {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.sub != nil {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub, err := s.subscribe(subCtx)
	if err != nil {
		cancel()
		return err
	}
	s.sub = sub
	s.cancel = cancel
	return nil
}

func (s *Store) subscribe(ctx context.Context) (remote.Subscription, error) {
	opts := remote.SubscribeOptions{OrderByCreatedAtDesc: true}
	return s.col.Subscribe(ctx, opts, s.applySnapshot, func(err error) {
		s.handleSubscriptionError(ctx, err)
	})
}

// Unsubscribe cancels the active subscription. Safe to call when none is
// active.
func (s *Store) Unsubscribe() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.sub == nil {
		return
	}
	s.cancel()
	s.sub.Unsubscribe()
	s.sub = nil
	s.cancel = nil
}

func (s *Store) applySnapshot(snap remote.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A slow delivery racing a fresh one must not win.
	if snap.Generation <= s.lastGen {
		return
	}
	s.lastGen = snap.Generation

	products := make([]Product, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var p Product
		if err := doc.Decode(&p); err != nil {
			s.logger.WithError(err).WithField("id", doc.ID).Warn("skipping undecodable product document")
			continue
		}
		p.ID = doc.ID
		products = append(products, p)
	}

	s.products = products
	s.loading = false
	s.logger.WithField("count", len(products)).Debug("catalog snapshot applied")
}

// handleSubscriptionError replaces the failed subscription after a backoff
// instead of stacking a permanent fallback listener. The cache is marked
// non-loading but kept intact.
func (s *Store) handleSubscriptionError(ctx context.Context, err error) {
	s.logger.WithError(err).Error("catalog subscription error")

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	s.subMu.Lock()
	if s.retrying || s.sub == nil {
		s.subMu.Unlock()
		return
	}
	s.retrying = true
	s.subMu.Unlock()

	go s.retryLoop(ctx)
}

func (s *Store) retryLoop(ctx context.Context) {
	defer func() {
		s.subMu.Lock()
		s.retrying = false
		s.subMu.Unlock()
	}()

	backoff := s.config.Remote.RetryBackoff
	for attempt := 1; attempt <= s.config.Remote.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2

		s.subMu.Lock()
		if s.sub == nil { // unsubscribed while waiting
			s.subMu.Unlock()
			return
		}
		s.sub.Unsubscribe()
		sub, err := s.subscribe(ctx)
		if err == nil {
			s.sub = sub
			s.subMu.Unlock()
			s.logger.WithField("attempt", attempt).Info("catalog subscription re-established")
			return
		}
		s.sub = nil
		s.subMu.Unlock()
		s.logger.WithError(err).WithField("attempt", attempt).Warn("catalog resubscribe failed")
	}
	s.logger.Error("catalog subscription abandoned after retries")
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Images      []string `json:"images,omitempty"`
	Discount    int      `json:"discount,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
}

// UpdateRequest represents a partial product update; nil fields are left
// untouched.
type UpdateRequest struct {
	Name        *string   `json:"name,omitempty"`
	Price       *int64    `json:"price,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Discount    *int      `json:"discount,omitempty"`
	Sizes       *[]string `json:"sizes,omitempty"`
}

// Create writes a new product through to the remote collection. The cache
// picks it up on the next push notification, not before, so the caller must
// not assume immediate visibility of its own write.
func (s *Store) Create(ctx context.Context, sess *user.Session, req *CreateRequest) (string, error) {
	if !sess.Authenticated() || !sess.IsAdmin {
		return "", ErrAdminRequired
	}
	if req.Name == "" || req.Price <= 0 {
		return "", fmt.Errorf("product name and a positive price are required")
	}

	now := time.Now().UTC()
	p := Product{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		Image:       req.Image,
		Images:      req.Images,
		Discount:    req.Discount,
		Sizes:       req.Sizes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.col.Add(ctx, &p)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	return id, nil
}

// Update merges the non-nil fields of req into the stored document.
func (s *Store) Update(ctx context.Context, sess *user.Session, id string, req *UpdateRequest) error {
	if !sess.Authenticated() || !sess.IsAdmin {
		return ErrAdminRequired
	}

	// A merge onto a missing id would mint a partial document that the next
	// snapshot then surfaces as a product.
	var existing Product
	if err := s.col.Get(ctx, id, &existing); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	fields := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if req.Images != nil {
		fields["images"] = *req.Images
	}
	if req.Discount != nil {
		fields["discount"] = *req.Discount
	}
	if req.Sizes != nil {
		fields["sizes"] = *req.Sizes
	}

	if err := s.col.Set(ctx, id, fields, true); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes the product document from the remote collection.
func (s *Store) Delete(ctx context.Context, sess *user.Session, id string) error {
	if !sess.Authenticated() || !sess.IsAdmin {
		return ErrAdminRequired
	}
	if err := s.col.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// Get looks up a product in the current cache.
func (s *Store) Get(id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Products returns a copy of the cached catalog in subscription order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Loading reports whether the first snapshot is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Categories returns the distinct category tags present in the cache.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, p := range s.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	return categories
}
