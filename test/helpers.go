package test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/biv3k224/ecommerce/internal/domain"
	"github.com/biv3k224/ecommerce/internal/events"
	"github.com/biv3k224/ecommerce/internal/handler"
	"github.com/biv3k224/ecommerce/internal/infrastructure/logger"
	"github.com/biv3k224/ecommerce/internal/security"
	"github.com/biv3k224/ecommerce/internal/security/audit"
	"github.com/biv3k224/ecommerce/internal/security/auth"
	"github.com/biv3k224/ecommerce/internal/security/middleware"
	"github.com/biv3k224/ecommerce/internal/service"
)

const testJWTSecret = "integration-secret-at-least-32-chars!"

// TestServerHelper hosts the full HTTP surface over in-memory stores, so
// the routing, middleware and handler behavior can be exercised without
// postgres or redis.
type TestServerHelper struct {
	Server      *httptest.Server
	Logger      *slog.Logger
	AuthService *service.AuthService
	Inventory   *service.InventoryService
	Broker      *events.Broker
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()

	log := logger.NewLogger("error", "text")
	broker := events.NewBroker(16, log)

	productRepo := newFakeProductRepo()
	userRepo := newFakeUserRepo()

	tokenManager := auth.NewTokenManager(testJWTSecret, "storeinventory-test", time.Hour)
	inventory := service.NewInventoryService(productRepo, nil, broker, time.Minute, log)
	authService := service.NewAuthService(userRepo, tokenManager, log)
	authzService := security.NewAuthorizationService(log)
	auditLogger := audit.NewLogger(log)

	publicProducts := handler.NewPublicProductHandler(inventory, log)
	adminProducts := handler.NewAdminProductHandler(inventory, log)
	authHandler := handler.NewAuthHandler(authService, auditLogger, log)
	feedHandler := handler.NewInventoryFeedHandler(broker, log, []string{"*"})

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/public/products", publicProducts.List)
	mux.HandleFunc("GET /api/public/products/available", publicProducts.Available)
	mux.HandleFunc("GET /api/public/products/categories", publicProducts.Categories)
	mux.HandleFunc("GET /api/public/products/category/{category}", publicProducts.ByCategory)
	mux.HandleFunc("GET /api/public/products/category/{category}/page", publicProducts.CategoryPage)
	mux.HandleFunc("GET /api/public/products/search", publicProducts.Search)
	mux.HandleFunc("GET /api/public/products/search/category", publicProducts.SearchCategory)
	mux.HandleFunc("GET /api/public/products/filter", publicProducts.Filter)
	mux.HandleFunc("GET /api/public/products/page", publicProducts.Page)
	mux.HandleFunc("GET /api/public/products/{id}", publicProducts.Get)

	mux.HandleFunc("GET /api/admin/products", adminProducts.List)
	mux.HandleFunc("POST /api/admin/products", adminProducts.Create)
	mux.HandleFunc("GET /api/admin/products/page", adminProducts.Page)
	mux.HandleFunc("GET /api/admin/products/low-stock", adminProducts.LowStock)
	mux.HandleFunc("GET /api/admin/products/search", adminProducts.Search)
	mux.HandleFunc("GET /api/admin/products/stats/categories", adminProducts.CategoryStats)
	mux.HandleFunc("GET /api/admin/products/category/{category}", adminProducts.ByCategory)
	mux.HandleFunc("GET /api/admin/products/{id}", adminProducts.Get)
	mux.HandleFunc("PUT /api/admin/products/{id}", adminProducts.Update)
	mux.HandleFunc("DELETE /api/admin/products/{id}", adminProducts.Delete)
	mux.HandleFunc("PATCH /api/admin/products/{id}/availability", adminProducts.Availability)

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/validate", authHandler.Validate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("GET /ws/inventory", feedHandler)

	var root http.Handler = mux
	root = middleware.JWTMiddleware(tokenManager, authzService, auditLogger, log)(root)
	root = middleware.ValidateJSONContentType(log)(root)
	root = middleware.RequestIDMiddleware(root)

	server := httptest.NewServer(root)

	return &TestServerHelper{
		Server:      server,
		Logger:      log,
		AuthService: authService,
		Inventory:   inventory,
		Broker:      broker,
	}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// RegisterAndLogin creates a user and returns a bearer token for it.
func (h *TestServerHelper) RegisterAndLogin(t *testing.T, username, password, role string) string {
	t.Helper()

	_, err := h.AuthService.Register(context.Background(), service.UserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %q: %v", username, err)
	}

	result, err := h.AuthService.Authenticate(context.Background(), username, password)
	if err != nil {
		t.Fatalf("login %q: %v", username, err)
	}
	return result.Token
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

// fakeProductRepo is a map-backed stand-in for the postgres repository.
type fakeProductRepo struct {
	products map[string]domain.Product
}

var _ domain.ProductRepository = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]domain.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	for _, existing := range f.products {
		if existing.Name == p.Name {
			return domain.ErrDuplicateName
		}
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.products[p.ID] = *p
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProductRepo) GetByName(_ context.Context, name string) (*domain.Product, error) {
	for _, p := range f.products {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProductRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, p := range f.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	f.products[p.ID] = *p
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) Search(_ context.Context, filter domain.SearchFilter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.Available != nil && p.Available != *filter.Available {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProductRepo) FindWithFilters(ctx context.Context, category string, available *bool, page, size int) (*domain.ProductPage, error) {
	all, _ := f.Search(ctx, domain.SearchFilter{Category: category, Available: available})
	total := len(all)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return &domain.ProductPage{
		Items:      all[start:end],
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func (f *fakeProductRepo) Categories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range f.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeProductRepo) CountByCategory(ctx context.Context) ([]domain.CategorySummary, error) {
	categories, _ := f.Categories(ctx)
	var out []domain.CategorySummary
	for _, c := range categories {
		s := domain.CategorySummary{Category: c}
		for _, p := range f.products {
			if p.Category == c {
				s.ProductCount++
				s.TotalStock += p.Quantity
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeProductRepo) LowStock(_ context.Context, threshold int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if p.Available && p.Quantity < threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeUserRepo is a map-backed stand-in for the postgres user store.
type fakeUserRepo struct {
	users map[string]domain.User
}

var _ domain.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.users {
		cp := u
		out = append(out, &cp)
	}
	return out, nil
}
