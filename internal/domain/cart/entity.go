// internal/domain/cart/entity.go
package cart

// Item is a single cart line. Lines are keyed by (ProductID, Size) so the
// same product in two sizes occupies two lines.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}
