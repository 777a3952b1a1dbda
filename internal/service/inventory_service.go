package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/biv3k224/ecommerce/internal/cache"
	"github.com/biv3k224/ecommerce/internal/domain"
	"github.com/biv3k224/ecommerce/internal/events"
	"github.com/biv3k224/ecommerce/internal/observability/metrics"
)

const (
	cacheKeyCategories    = "catalog:categories"
	cacheKeyCategoryStats = "catalog:category-stats"
	cachePrefixCatalog    = "catalog:"
)

// InventoryService orchestrates the product store, enforcing the
// product-level invariants: name uniqueness, default availability and
// numeric bounds.
type InventoryService struct {
	productRepo domain.ProductRepository
	catalog     cache.Store
	broker      *events.Broker
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// NewInventoryService creates a new inventory service. catalog and broker
// may be nil, disabling caching and event publication respectively.
func NewInventoryService(
	productRepo domain.ProductRepository,
	catalog cache.Store,
	broker *events.Broker,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = cache.NopStore{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &InventoryService{
		productRepo: productRepo,
		catalog:     catalog,
		broker:      broker,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// ProductInput carries the fields of a product create or full update.
// Available is a pointer so "unset" is distinguishable from false: at
// creation an unset flag defaults to true, on update it keeps the
// product's stored flag.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Available   *bool   `json:"available"`
	ImageURL    string  `json:"imageUrl"`
}

func validateProductInput(input ProductInput) error {
	if input.Name == "" {
		return fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}
	if input.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if input.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}
	return nil
}

// CreateProduct persists a new product. Availability defaults to true
// when unset. Fails with ErrDuplicateName if the name is taken.
func (s *InventoryService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		metrics.ObserveProductOperation("create", "invalid")
		return nil, err
	}

	// Friendly fast path; the unique constraint catches the race.
	if exists, err := s.productRepo.ExistsByName(ctx, input.Name); err != nil {
		return nil, err
	} else if exists {
		metrics.ObserveProductOperation("create", "duplicate")
		return nil, domain.ErrDuplicateName
	}

	available := true
	if input.Available != nil {
		available = *input.Available
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Available:   available,
		ImageURL:    input.ImageURL,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		metrics.ObserveProductOperation("create", "error")
		return nil, err
	}

	metrics.ObserveProductOperation("create", "ok")
	s.logger.Info("product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	s.catalog.Invalidate(ctx, cachePrefixCatalog)
	s.publish(events.TypeCreated, product)

	return product, nil
}

// UpdateProduct overwrites every field of an existing product. Name
// uniqueness is rechecked only when the name actually changed. An unset
// Available leaves the stored availability flag as it was.
func (s *InventoryService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		metrics.ObserveProductOperation("update", "invalid")
		return nil, err
	}

	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		metrics.ObserveProductOperation("update", "not_found")
		return nil, err
	}

	if input.Name != existing.Name {
		if exists, err := s.productRepo.ExistsByName(ctx, input.Name); err != nil {
			return nil, err
		} else if exists {
			metrics.ObserveProductOperation("update", "duplicate")
			return nil, domain.ErrDuplicateName
		}
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Category = input.Category
	existing.Price = input.Price
	existing.Quantity = input.Quantity
	if input.Available != nil {
		existing.Available = *input.Available
	}
	existing.ImageURL = input.ImageURL

	if err := s.productRepo.Update(ctx, existing); err != nil {
		metrics.ObserveProductOperation("update", "error")
		return nil, err
	}

	metrics.ObserveProductOperation("update", "ok")
	s.logger.Info("product updated", slog.String("product_id", id))

	s.catalog.Invalidate(ctx, cachePrefixCatalog)
	s.publish(events.TypeUpdated, existing)

	return existing, nil
}

// DeleteProduct removes a product, failing with ErrNotFound when absent.
func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		metrics.ObserveProductOperation("delete", "not_found")
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		metrics.ObserveProductOperation("delete", "error")
		return err
	}

	metrics.ObserveProductOperation("delete", "ok")
	s.logger.Info("product deleted",
		slog.String("product_id", id),
		slog.String("name", product.Name),
	)

	s.catalog.Invalidate(ctx, cachePrefixCatalog)
	s.publish(events.TypeDeleted, product)

	return nil
}

// SetAvailability reads the product and performs a full update with only
// the availability flag changed.
func (s *InventoryService) SetAvailability(ctx context.Context, id string, available bool) (*domain.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.UpdateProduct(ctx, id, ProductInput{
		Name:        existing.Name,
		Description: existing.Description,
		Category:    existing.Category,
		Price:       existing.Price,
		Quantity:    existing.Quantity,
		Available:   &available,
		ImageURL:    existing.ImageURL,
	})
}

// GetProduct retrieves a product by ID. Absence is reported as a nil
// product, not an error.
func (s *InventoryService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns the whole catalog, name-sorted.
func (s *InventoryService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.productRepo.Search(ctx, domain.SearchFilter{})
}

// ListAvailableProducts returns all available products, name-sorted.
func (s *InventoryService) ListAvailableProducts(ctx context.Context) ([]domain.Product, error) {
	available := true
	return s.productRepo.Search(ctx, domain.SearchFilter{Available: &available})
}

// ProductsByCategory lists products of one category, optionally only the
// available ones.
func (s *InventoryService) ProductsByCategory(ctx context.Context, category string, availableOnly bool) ([]domain.Product, error) {
	filter := domain.SearchFilter{Category: category}
	if availableOnly {
		available := true
		filter.Available = &available
	}
	return s.productRepo.Search(ctx, filter)
}

// SearchByName matches the name case-insensitively as a substring.
func (s *InventoryService) SearchByName(ctx context.Context, name string, availableOnly bool) ([]domain.Product, error) {
	filter := domain.SearchFilter{Name: name}
	if availableOnly {
		available := true
		filter.Available = &available
	}
	return s.productRepo.Search(ctx, filter)
}

// SearchProducts runs the full five-criteria conjunctive search.
func (s *InventoryService) SearchProducts(ctx context.Context, filter domain.SearchFilter) ([]domain.Product, error) {
	return s.productRepo.Search(ctx, filter)
}

// ListPaged pages over the whole catalog.
func (s *InventoryService) ListPaged(ctx context.Context, page, size int) (*domain.ProductPage, error) {
	return s.productRepo.FindWithFilters(ctx, "", nil, page, size)
}

// ListAvailablePaged pages over available products only. The availability
// filter narrows the candidate set before the page window is applied.
func (s *InventoryService) ListAvailablePaged(ctx context.Context, page, size int) (*domain.ProductPage, error) {
	available := true
	return s.productRepo.FindWithFilters(ctx, "", &available, page, size)
}

// ListByCategoryPaged pages over one category, filter first.
func (s *InventoryService) ListByCategoryPaged(ctx context.Context, category string, availableOnly bool, page, size int) (*domain.ProductPage, error) {
	var available *bool
	if availableOnly {
		v := true
		available = &v
	}
	return s.productRepo.FindWithFilters(ctx, category, available, page, size)
}

// Categories lists the distinct category labels, served read-through from
// the catalog cache.
func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	if raw, ok := s.catalog.Get(ctx, cacheKeyCategories); ok {
		var categories []string
		if err := json.Unmarshal([]byte(raw), &categories); err == nil {
			metrics.ObserveCacheHit()
			return categories, nil
		}
	}
	metrics.ObserveCacheMiss()

	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(categories); err == nil {
		s.catalog.Set(ctx, cacheKeyCategories, string(raw), s.cacheTTL)
	}
	return categories, nil
}

// CategoryStats aggregates product count and stock per category, cached
// like Categories.
func (s *InventoryService) CategoryStats(ctx context.Context) ([]domain.CategorySummary, error) {
	if raw, ok := s.catalog.Get(ctx, cacheKeyCategoryStats); ok {
		var stats []domain.CategorySummary
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			metrics.ObserveCacheHit()
			return stats, nil
		}
	}
	metrics.ObserveCacheMiss()

	stats, err := s.productRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		s.catalog.Set(ctx, cacheKeyCategoryStats, string(raw), s.cacheTTL)
	}
	return stats, nil
}

// LowStockProducts lists available products below the threshold.
func (s *InventoryService) LowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", domain.ErrValidation)
	}
	return s.productRepo.LowStock(ctx, threshold)
}

func (s *InventoryService) publish(eventType events.Type, product *domain.Product) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(events.Event{
		Type:      eventType,
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Quantity:  product.Quantity,
	})
}
