// internal/domain/payment/upi.go
package payment

import (
	"fmt"
	"time"

	"github.com/your-org/storefront/internal/config"
)

// Payment statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Result is a gateway confirmation for a UPI payment.
type Result struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
}

// Success reports whether the payment went through.
func (r Result) Success() bool {
	return r.Status == StatusSuccess
}

// UPIGateway simulates a UPI payment provider. Confirmations succeed
// unconditionally; a real provider would verify the transfer against the
// configured VPA.
type UPIGateway struct {
	upiID string
	now   func() time.Time
}

// NewUPIGateway creates a gateway collecting payments into the configured
// UPI id.
func NewUPIGateway(cfg *config.Config) *UPIGateway {
	return &UPIGateway{
		upiID: cfg.Payment.UPIID,
		now:   time.Now,
	}
}

// UPIID returns the merchant VPA payments are addressed to.
func (g *UPIGateway) UPIID() string {
	return g.upiID
}

// Confirm records a completed transfer of amount and returns the
// confirmation.
func (g *UPIGateway) Confirm(amount int64) Result {
	return Result{
		TransactionID: fmt.Sprintf("UPI_%d", g.now().UnixMilli()),
		Status:        StatusSuccess,
		Amount:        amount,
	}
}
