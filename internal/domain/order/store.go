// internal/domain/order/store.go
package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/localstore"
	"github.com/your-org/storefront/internal/remote"
)

// Collection is the remote collection holding order documents.
const Collection = "orders"

const storageKey = "orders"

var (
	// ErrNotFound is returned when the order is not in the local cache.
	ErrNotFound = errors.New("order not found")
	// ErrAuthRequired is returned when an operation needs a signed-in user.
	ErrAuthRequired = errors.New("authentication required")
	// ErrUnknownStep is returned when a status target is outside the
	// delivery progression.
	ErrUnknownStep = errors.New("unknown delivery step")
)

// Store holds the signed-in user's orders. Creation writes through to the
// remote collection; a live subscription keeps the cache current. Status
// updates apply locally first; remote persistence failures are recorded in
// the store error state rather than reverting the local change.
type Store struct {
	col    remote.Collection
	local  *localstore.Store
	logger *logrus.Entry

	mu      sync.RWMutex
	orders  []Order
	lastGen uint64
	lastErr error

	subMu sync.Mutex
	sub   remote.Subscription
}

// NewStore creates an order store rehydrated from local storage.
func NewStore(svc remote.Service, local *localstore.Store, logger *logrus.Entry) *Store {
	s := &Store{
		col:    svc.Collection(Collection),
		local:  local,
		logger: logger,
	}
	var orders []Order
	ok, err := local.Load(storageKey, &orders)
	if err != nil {
		logger.WithError(err).Warn("failed to load orders from local storage")
	} else if ok {
		s.orders = orders
	}
	return s
}

// CreateRequest describes a new order.
type CreateRequest struct {
	Items         []cart.Item
	Total         int64
	PaymentMethod string
	Payment       *PaymentDetails
	Address       string
	Phone         string
}

// Create places an order for the signed-in user. The first two delivery
// steps complete immediately and the order starts confirmed.
func (s *Store) Create(ctx context.Context, sess user.Session, req CreateRequest) (*Order, error) {
	if !sess.Authenticated() {
		return nil, ErrAuthRequired
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order has no items")
	}

	now := time.Now()
	o := Order{
		UserID:        sess.UserID,
		Items:         req.Items,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		Payment:       req.Payment,
		Address:       req.Address,
		Phone:         req.Phone,
		Status:        StatusConfirmed,
		DeliverySteps: newDeliverySteps(now),
		CreatedAt:     now,
	}

	// One write: the subscription fills in the id from the document key, so
	// a failure here means no document exists and a retry cannot duplicate.
	id, err := s.col.Add(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	o.ID = id

	s.mu.Lock()
	s.orders = append([]Order{o.clone()}, s.orders...)
	s.mu.Unlock()
	s.persist()

	return &o, nil
}

// Subscribe opens a live subscription on the collection and keeps the cache
// holding the user's orders, newest first. Subsequent calls replace the
// previous subscription.
func (s *Store) Subscribe(ctx context.Context, userID string) error {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}

	sub, err := s.col.Subscribe(ctx, remote.SubscribeOptions{OrderByCreatedAtDesc: true},
		func(snap remote.Snapshot) { s.applySnapshot(userID, snap) },
		func(err error) {
			s.logger.WithError(err).Error("order subscription failed")
			s.setErr(err)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to orders: %w", err)
	}
	s.sub = sub
	return nil
}

// Unsubscribe stops the live subscription. Safe to call when inactive.
func (s *Store) Unsubscribe() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
}

func (s *Store) applySnapshot(userID string, snap remote.Snapshot) {
	s.mu.Lock()
	if snap.Generation <= s.lastGen {
		s.mu.Unlock()
		return
	}
	s.lastGen = snap.Generation

	orders := make([]Order, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		var o Order
		if err := doc.Decode(&o); err != nil {
			s.logger.WithError(err).WithField("doc_id", doc.ID).Warn("skipping malformed order document")
			continue
		}
		if o.UserID != userID {
			continue
		}
		if o.ID == "" {
			o.ID = doc.ID
		}
		orders = append(orders, o)
	}
	s.orders = orders
	s.lastErr = nil
	s.mu.Unlock()

	s.persist()
}

// AdvanceStatus completes every delivery step up to and including target.
// Steps already completed stay completed; advancing backwards is a no-op.
// The overall status follows the furthest completed step. Persistence
// failures are recorded in the store error state, the local change stands.
func (s *Store) AdvanceStatus(ctx context.Context, orderID, target string) (*Order, error) {
	idx := stepIndex(target)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, target)
	}

	s.mu.Lock()
	o := s.find(orderID)
	if o == nil {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if o.IsCancelled() {
		s.mu.Unlock()
		return nil, fmt.Errorf("order %s is cancelled", orderID)
	}

	now := time.Now()
	for i := range o.DeliverySteps {
		if i > idx || o.DeliverySteps[i].Completed {
			continue
		}
		o.DeliverySteps[i].Completed = true
		t := now
		o.DeliverySteps[i].Date = &t
	}
	for i := len(o.DeliverySteps) - 1; i >= 0; i-- {
		if o.DeliverySteps[i].Completed {
			o.Status = stepStatus[o.DeliverySteps[i].Step]
			break
		}
	}
	updated := o.clone()
	s.mu.Unlock()

	s.persist()
	s.save(ctx, updated)
	return &updated, nil
}

// Cancel replaces the delivery progression with a single completed
// cancellation step. Cancelling a cancelled order is a no-op.
func (s *Store) Cancel(ctx context.Context, orderID string) (*Order, error) {
	s.mu.Lock()
	o := s.find(orderID)
	if o == nil {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if o.IsCancelled() {
		updated := o.clone()
		s.mu.Unlock()
		return &updated, nil
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.DeliverySteps = []Step{{Step: StepCancelled, Completed: true, Date: &now}}
	updated := o.clone()
	s.mu.Unlock()

	s.persist()
	s.save(ctx, updated)
	return &updated, nil
}

// Get returns the cached order with the given id.
func (s *Store) Get(orderID string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o := s.find(orderID); o != nil {
		out := o.clone()
		return &out, nil
	}
	return nil, ErrNotFound
}

// Orders returns a copy of the cached orders, newest first.
func (s *Store) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, len(s.orders))
	for i := range s.orders {
		out[i] = s.orders[i].clone()
	}
	return out
}

// Err returns the last recorded subscription or persistence failure. Cleared
// by the next applied snapshot.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// find returns a pointer into s.orders. Callers hold s.mu.
func (s *Store) find(orderID string) *Order {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return &s.orders[i]
		}
	}
	return nil
}

func (s *Store) save(ctx context.Context, o Order) {
	if err := s.col.Set(ctx, o.ID, map[string]any{
		"status":         o.Status,
		"delivery_steps": o.DeliverySteps,
	}, true); err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).Error("failed to persist order status")
		s.setErr(err)
	}
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) persist() {
	s.mu.RLock()
	orders := make([]Order, len(s.orders))
	for i := range s.orders {
		orders[i] = s.orders[i].clone()
	}
	s.mu.RUnlock()

	if err := s.local.Save(storageKey, orders); err != nil {
		s.logger.WithError(err).Warn("failed to persist order cache")
	}
}
