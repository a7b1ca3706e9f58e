// internal/domain/wishlist/entity.go
package wishlist

// Item is a saved product reference.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
}

// document is the remote wishlist payload, one document per user.
type document struct {
	Items []Item `json:"items"`
}
