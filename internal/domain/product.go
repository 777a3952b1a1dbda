package domain

import (
	"context"
	"time"
)

// Product represents a catalog item tracked by the inventory.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Available   bool      `json:"available"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SearchFilter carries the optional criteria of a product search.
// A nil pointer or empty string means the criterion contributes no
// predicate at all; supplied criteria are combined with AND.
type SearchFilter struct {
	Name      string
	Category  string
	MinPrice  *float64
	MaxPrice  *float64
	Available *bool
}

// ProductPage is one window of a filtered, name-ordered product listing.
// TotalItems counts every row matching the filter, not just this window.
type ProductPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
}

// CategorySummary aggregates product count and stock per category.
type CategorySummary struct {
	Category     string `json:"category"`
	ProductCount int    `json:"productCount"`
	TotalStock   int    `json:"totalStock"`
}

// ProductRepository defines data access for products.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter SearchFilter) ([]Product, error)
	FindWithFilters(ctx context.Context, category string, available *bool, page, size int) (*ProductPage, error)
	Categories(ctx context.Context) ([]string, error)
	CountByCategory(ctx context.Context) ([]CategorySummary, error)
	LowStock(ctx context.Context, threshold int) ([]Product, error)
}
