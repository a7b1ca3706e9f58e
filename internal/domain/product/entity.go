// internal/domain/product/entity.go
package product

import (
	"time"
)

// Product represents a catalog product mirrored from the remote `products`
// collection. The remote service owns these documents; the store keeps a
// read-through cache.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"` // minor currency units
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Images      []string  `json:"images,omitempty"`
	Discount    int       `json:"discount,omitempty"` // percentage off, 0 = none
	Rating      float64   `json:"rating,omitempty"`
	Sizes       []string  `json:"sizes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DiscountedPrice returns the effective price after the discount percentage.
func (p *Product) DiscountedPrice() int64 {
	if p.Discount <= 0 || p.Discount >= 100 {
		return p.Price
	}
	return p.Price - (p.Price*int64(p.Discount))/100
}

// HasDiscount reports whether a discount applies.
func (p *Product) HasDiscount() bool {
	return p.Discount > 0 && p.Discount < 100
}
