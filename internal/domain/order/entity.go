// internal/domain/order/entity.go
package order

import (
	"strings"
	"time"

	"github.com/your-org/storefront/internal/domain/cart"
)

// Order statuses.
const (
	StatusConfirmed      = "confirmed"
	StatusProcessing     = "processing"
	StatusShipped        = "shipped"
	StatusOutForDelivery = "out-for-delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// Delivery step names, in progression order.
const (
	StepOrderPlaced    = "order-placed"
	StepConfirmed      = "confirmed"
	StepProcessing     = "processing"
	StepShipped        = "shipped"
	StepOutForDelivery = "out-for-delivery"
	StepDelivered      = "delivered"
	StepCancelled      = "cancelled"
)

// stepSequence is the delivery progression for a live order. The overall
// status is derived from the furthest completed step.
var stepSequence = []string{
	StepOrderPlaced,
	StepConfirmed,
	StepProcessing,
	StepShipped,
	StepOutForDelivery,
	StepDelivered,
}

// stepStatus maps a completed step to the overall order status it implies.
var stepStatus = map[string]string{
	StepOrderPlaced:    StatusConfirmed,
	StepConfirmed:      StatusConfirmed,
	StepProcessing:     StatusProcessing,
	StepShipped:        StatusShipped,
	StepOutForDelivery: StatusOutForDelivery,
	StepDelivered:      StatusDelivered,
}

// Step is one entry in an order's delivery progression.
type Step struct {
	Step      string     `json:"step"`
	Completed bool       `json:"completed"`
	Date      *time.Time `json:"date,omitempty"`
}

// PaymentDetails records the gateway confirmation attached to a prepaid
// order. COD orders carry none.
type PaymentDetails struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
}

// Order is a placed order: an immutable snapshot of the cart at submission
// plus the evolving delivery progression.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Items         []cart.Item     `json:"items"`
	Total         int64           `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Payment       *PaymentDetails `json:"payment,omitempty"`
	Address       string          `json:"address"`
	Phone         string          `json:"phone"`
	Status        string          `json:"status"`
	DeliverySteps []Step          `json:"delivery_steps"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsCancelled reports whether the order has been cancelled.
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// ContainsProduct reports whether the order includes the product.
func (o *Order) ContainsProduct(productID string) bool {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// clone returns a deep copy, so callers can read it while the store keeps
// mutating its cached entry under the lock.
func (o *Order) clone() Order {
	out := *o
	out.Items = append([]cart.Item(nil), o.Items...)
	out.DeliverySteps = make([]Step, len(o.DeliverySteps))
	for i, st := range o.DeliverySteps {
		if st.Date != nil {
			d := *st.Date
			st.Date = &d
		}
		out.DeliverySteps[i] = st
	}
	if o.Payment != nil {
		p := *o.Payment
		out.Payment = &p
	}
	return out
}

// newDeliverySteps builds the initial progression with placement and
// confirmation already completed.
func newDeliverySteps(now time.Time) []Step {
	steps := make([]Step, len(stepSequence))
	for i, name := range stepSequence {
		steps[i] = Step{Step: name}
		if i < 2 {
			steps[i].Completed = true
			t := now
			steps[i].Date = &t
		}
	}
	return steps
}

// stepIndex resolves a step name case-insensitively. Returns -1 for names
// outside the progression.
func stepIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, s := range stepSequence {
		if s == name {
			return i
		}
	}
	return -1
}
