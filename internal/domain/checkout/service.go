// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/payment"
	"github.com/your-org/storefront/internal/domain/user"
)

// Payment methods.
const (
	MethodCOD = "cod"
	MethodUPI = "upi"
)

var (
	// ErrEmptyCart is returned when checkout is submitted with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentRequired is returned when a UPI checkout is submitted
	// without a successful payment confirmation.
	ErrPaymentRequired = errors.New("payment confirmation required")
)

// Form is the delivery and payment detail collected before placing an order.
type Form struct {
	PaymentMethod string `validate:"required,oneof=cod upi"`
	Address       string `validate:"required"`
	Phone         string `validate:"required,len=10,numeric"`
}

// Service drives the checkout flow. A cash-on-delivery submission places the
// order directly; a UPI submission requires a recorded successful payment
// confirmation first. The cart is cleared only after the order is placed.
type Service struct {
	cart     *cart.Store
	orders   *order.Store
	gateway  *payment.UPIGateway
	logger   *logrus.Entry
	validate *validator.Validate

	mu      sync.Mutex
	pending *payment.Result
}

// NewService creates a checkout service.
func NewService(cartStore *cart.Store, orderStore *order.Store, gateway *payment.UPIGateway, logger *logrus.Entry) *Service {
	return &Service{
		cart:     cartStore,
		orders:   orderStore,
		gateway:  gateway,
		logger:   logger,
		validate: validator.New(),
	}
}

// ValidateForm checks the delivery form without submitting.
func (s *Service) ValidateForm(form Form) error {
	if err := s.validate.Struct(form); err != nil {
		return fmt.Errorf("invalid checkout form: %w", err)
	}
	return nil
}

// PayUPI runs the UPI payment for the current cart total and records the
// confirmation. A non-success confirmation clears any previously recorded
// payment.
func (s *Service) PayUPI() payment.Result {
	res := s.gateway.Confirm(s.cart.Subtotal())
	s.RecordPayment(res)
	return res
}

// RecordPayment stores a gateway confirmation for the next UPI submission.
// Failed confirmations clear the stored payment.
func (s *Service) RecordPayment(res payment.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Success() {
		s.pending = &res
		return
	}
	s.pending = nil
}

// PendingPayment returns the recorded confirmation, if any.
func (s *Service) PendingPayment() *payment.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	out := *s.pending
	return &out
}

// Submit places an order from the current cart. On success the cart and any
// recorded payment are cleared; on failure both are left untouched.
func (s *Service) Submit(ctx context.Context, sess user.Session, form Form) (*order.Order, error) {
	if err := s.ValidateForm(form); err != nil {
		return nil, err
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var details *order.PaymentDetails
	if form.PaymentMethod == MethodUPI {
		pending := s.PendingPayment()
		if pending == nil || !pending.Success() {
			return nil, ErrPaymentRequired
		}
		details = &order.PaymentDetails{
			TransactionID: pending.TransactionID,
			Status:        pending.Status,
			Amount:        pending.Amount,
		}
	}

	o, err := s.orders.Create(ctx, sess, order.CreateRequest{
		Items:         items,
		Total:         s.cart.Subtotal(),
		PaymentMethod: form.PaymentMethod,
		Payment:       details,
		Address:       form.Address,
		Phone:         form.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.cart.Clear()
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"method":   form.PaymentMethod,
		"total":    o.Total,
	}).Info("order placed")

	return o, nil
}
