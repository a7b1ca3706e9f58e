// internal/domain/review/store.go
package review

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/localstore"
)

const storageKey = "reviews"

var (
	// ErrAuthRequired is returned when the author is not signed in.
	ErrAuthRequired = errors.New("authentication required")
	// ErrAlreadyReviewed is returned when the author already reviewed the
	// product.
	ErrAlreadyReviewed = errors.New("product already reviewed")
	// ErrPurchaseRequired is returned when the author has no live order
	// containing the product.
	ErrPurchaseRequired = errors.New("product must be ordered before reviewing")
)

// OrderHistory is the slice of the order store reviews need.
type OrderHistory interface {
	Orders() []order.Order
}

// Store holds product reviews, persisted locally.
type Store struct {
	orders   OrderHistory
	local    *localstore.Store
	logger   *logrus.Entry
	validate *validator.Validate

	mu      sync.RWMutex
	reviews []Review
}

// NewStore creates a review store rehydrated from local storage.
func NewStore(orders OrderHistory, local *localstore.Store, logger *logrus.Entry) *Store {
	s := &Store{
		orders:   orders,
		local:    local,
		logger:   logger,
		validate: validator.New(),
	}
	var reviews []Review
	ok, err := local.Load(storageKey, &reviews)
	if err != nil {
		logger.WithError(err).Warn("failed to load reviews from local storage")
	} else if ok {
		s.reviews = reviews
	}
	return s
}

// CreateRequest describes a new review.
type CreateRequest struct {
	ProductID string `validate:"required"`
	Rating    int    `validate:"required,min=1,max=5"`
	Comment   string `validate:"max=1000"`
}

// Create records a review. The author must be signed in, must have a
// non-cancelled order containing the product, and may review each product
// once.
func (s *Store) Create(sess user.Session, req CreateRequest) (*Review, error) {
	if !sess.Authenticated() {
		return nil, ErrAuthRequired
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid review: %w", err)
	}
	if !s.hasPurchased(sess.UserID, req.ProductID) {
		return nil, ErrPurchaseRequired
	}
	if s.HasUserReviewed(req.ProductID, sess.UserID) {
		return nil, ErrAlreadyReviewed
	}

	r := Review{
		ID:        uuid.New().String(),
		ProductID: req.ProductID,
		UserID:    sess.UserID,
		UserName:  sess.Email,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.reviews = append(s.reviews, r)
	s.mu.Unlock()
	s.persist()

	return &r, nil
}

// ProductReviews returns the reviews for a product, newest first.
func (s *Store) ProductReviews(productID string) []Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Review
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].ProductID == productID {
			out = append(out, s.reviews[i])
		}
	}
	return out
}

// AverageRating returns the mean rating for a product rounded to one
// decimal, and the review count. A product with no reviews averages zero.
func (s *Store) AverageRating(productID string) (float64, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, count := 0, 0
	for _, r := range s.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10, count
}

// HasUserReviewed reports whether the user already reviewed the product.
func (s *Store) HasUserReviewed(productID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reviews {
		if r.ProductID == productID && r.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Store) hasPurchased(userID, productID string) bool {
	for _, o := range s.orders.Orders() {
		if o.UserID == userID && !o.IsCancelled() && o.ContainsProduct(productID) {
			return true
		}
	}
	return false
}

func (s *Store) persist() {
	s.mu.RLock()
	reviews := make([]Review, len(s.reviews))
	copy(reviews, s.reviews)
	s.mu.RUnlock()

	if err := s.local.Save(storageKey, reviews); err != nil {
		s.logger.WithError(err).Warn("failed to persist reviews")
	}
}
