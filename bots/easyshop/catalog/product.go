// Package catalog holds the products offered by the shop.
package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a product does not exist or is not active.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a sellable item. Price is kept in minor currency units.
type Product struct {
	ID          int64  `db:"id" yaml:"id"`
	Title       string `db:"title" yaml:"title"`
	Description string `db:"description" yaml:"description"`
	Price       int64  `db:"price" yaml:"price"`
	Active      bool   `db:"active" yaml:"active"`
}

// Store reads the catalog. Only active products are visible.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Search(ctx context.Context, query string, limit int) ([]Product, error)
}

// DefaultProducts seeds empty catalogs.
func DefaultProducts() []Product {
	return []Product{
		{ID: 1, Title: "Pizza Margherita", Description: "Tomato sauce, mozzarella, basil", Price: 45000, Active: true},
		{ID: 2, Title: "Caesar Salad", Description: "Romaine, parmesan, croutons, chicken", Price: 32000, Active: true},
		{ID: 3, Title: "Lemonade", Description: "Homemade, 0.5 l", Price: 15000, Active: true},
	}
}

func matches(p Product, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}

func normalizeQuery(query string, limit int) (string, int) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return strings.ToLower(strings.TrimSpace(query)), limit
}
