package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/biv3k224/ecommerce/internal/domain"
)

const productColumns = "id, name, description, category, price, quantity, available, image_url, created_at, updated_at"

// PostgresProductRepository implements domain.ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProductRepository creates a new product repository
func NewPostgresProductRepository(db *sql.DB, logger *slog.Logger) *PostgresProductRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProductRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new product. The products_name_key unique constraint is
// the authoritative guard against concurrent duplicate names.
func (r *PostgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	query := `
		INSERT INTO products (id, name, description, category, price, quantity, available, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.Quantity,
		product.Available,
		product.ImageURL,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "products_name_key") {
			return domain.ErrDuplicateName
		}
		r.logger.Error("failed to create product",
			slog.String("name", product.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a product by its exact name
func (r *PostgresProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE name = $1"
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// ExistsByName reports whether any product carries the given name
func (r *PostgresProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE name = $1)", name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return exists, nil
}

// Update overwrites every mutable field of an existing product
func (r *PostgresProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4,
		    quantity = $5, available = $6, image_url = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.Quantity,
		product.Available,
		product.ImageURL,
		product.ID,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err, "products_name_key") {
			return domain.ErrDuplicateName
		}
		r.logger.Error("failed to update product",
			slog.String("id", product.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product by ID
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Search returns all products matching the conjunctive filter, ordered by
// name ascending. An empty filter returns the whole catalog name-sorted.
func (r *PostgresProductRepository) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Product, error) {
	c := productConjunction(filter.Name, filter.Category, filter.MinPrice, filter.MaxPrice, filter.Available)
	query := "SELECT " + productColumns + " FROM products" + c.where() + " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		r.logger.Error("failed to search products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// FindWithFilters applies the category/available filter first, then pages
// over the filtered set. TotalItems is counted over the same WHERE clause
// so clients can derive the page count regardless of the window size.
func (r *PostgresProductRepository) FindWithFilters(ctx context.Context, category string, available *bool, page, size int) (*domain.ProductPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	c := productConjunction("", category, nil, nil, available)
	where := c.where()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where, c.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT "+productColumns+" FROM products%s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		where, c.next(), c.next()+1,
	)
	args := append(c.args, size, page*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to page products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to page products: %w", err)
	}
	defer rows.Close()

	items, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}

	return &domain.ProductPage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Categories returns the distinct category labels in ascending order
func (r *PostgresProductRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM products ORDER BY category ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// CountByCategory aggregates product count and stock sum per category
func (r *PostgresProductRepository) CountByCategory(ctx context.Context) ([]domain.CategorySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(quantity), 0)
		FROM products
		GROUP BY category
		ORDER BY category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer rows.Close()

	summaries := []domain.CategorySummary{}
	for rows.Next() {
		var s domain.CategorySummary
		if err := rows.Scan(&s.Category, &s.ProductCount, &s.TotalStock); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// LowStock returns available products with quantity below the threshold
func (r *PostgresProductRepository) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE quantity < $1 AND available = true ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *PostgresProductRepository) scanOne(row *sql.Row) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.Quantity,
		&product.Available,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (r *PostgresProductRepository) scanAll(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Category,
			&product.Price,
			&product.Quantity,
			&product.Available,
			&product.ImageURL,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan product row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation on the named constraint (23505).
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
