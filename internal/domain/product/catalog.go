// internal/domain/product/catalog.go
package product

import (
	"sort"
	"strings"
)

// FilterOptions narrow and order the cached catalog.
type FilterOptions struct {
	Category  string
	MinPrice  int64
	MaxPrice  int64 // 0 = unbounded
	MinRating float64
	SortBy    string // latest | price-low | price-high | rating | trending
}

// Filter returns the cached products matching opts, ordered per SortBy.
func (s *Store) Filter(opts FilterOptions) []Product {
	products := s.Products()

	filtered := products[:0:0]
	for _, p := range products {
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		if p.Price < opts.MinPrice {
			continue
		}
		if opts.MaxPrice > 0 && p.Price > opts.MaxPrice {
			continue
		}
		if p.Rating < opts.MinRating {
			continue
		}
		filtered = append(filtered, p)
	}

	switch opts.SortBy {
	case "price-low":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "price-high":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case "rating":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Rating > filtered[j].Rating })
	case "trending":
		// Discounted products first, best rated within each group.
		sort.SliceStable(filtered, func(i, j int) bool {
			if filtered[i].HasDiscount() != filtered[j].HasDiscount() {
				return filtered[i].HasDiscount()
			}
			return filtered[i].Rating > filtered[j].Rating
		})
	default: // "latest": keep subscription order, newest first
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	}

	return filtered
}

// Suggestion is a search suggestion row.
type Suggestion struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

const maxSuggestions = 5

// Suggest returns up to five products whose name, category or description
// contains the query, case-insensitively. An empty query yields nothing.
func (s *Store) Suggest(query string) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []Suggestion
	for _, p := range s.Products() {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Category), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, Suggestion{ID: p.ID, Name: p.Name, Category: p.Category, Image: p.Image})
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

const maxRecommendations = 4

// Recommend returns up to four products from the same category as the given
// product, best rated first, ties broken by price proximity.
func (s *Store) Recommend(productID string) []Product {
	current, err := s.Get(productID)
	if err != nil {
		return nil
	}

	var pool []Product
	for _, p := range s.Products() {
		if p.ID == productID || p.Category != current.Category {
			continue
		}
		pool = append(pool, p)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Rating != pool[j].Rating {
			return pool[i].Rating > pool[j].Rating
		}
		return priceDistance(pool[i].Price, current.Price) < priceDistance(pool[j].Price, current.Price)
	})

	if len(pool) > maxRecommendations {
		pool = pool[:maxRecommendations]
	}
	return pool
}

func priceDistance(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
