package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/biv3k224/ecommerce/internal/domain"
	"github.com/biv3k224/ecommerce/internal/service"
)

// PublicProductHandler serves the unauthenticated catalog endpoints.
// Listing endpoints only expose available products.
type PublicProductHandler struct {
	inventory *service.InventoryService
	logger    *slog.Logger
}

// NewPublicProductHandler creates a new public product handler
func NewPublicProductHandler(inventory *service.InventoryService, logger *slog.Logger) *PublicProductHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PublicProductHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// List handles GET /api/public/products
func (h *PublicProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.ListAvailableProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Available handles GET /api/public/products/available
func (h *PublicProductHandler) Available(w http.ResponseWriter, r *http.Request) {
	h.List(w, r)
}

// Get handles GET /api/public/products/{id}
func (h *PublicProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, err := h.inventory.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		writeServiceError(w, err)
		return
	}
	if product == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Categories handles GET /api/public/products/categories
func (h *PublicProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.inventory.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// ByCategory handles GET /api/public/products/category/{category}
func (h *PublicProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	products, err := h.inventory.ProductsByCategory(r.Context(), category, true)
	if err != nil {
		h.logger.Error("failed to list products by category",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Search handles GET /api/public/products/search?name=
func (h *PublicProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	products, err := h.inventory.SearchByName(r.Context(), name, true)
	if err != nil {
		h.logger.Error("product search failed", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// SearchCategory handles GET /api/public/products/search/category?category=&name=
func (h *PublicProductHandler) SearchCategory(w http.ResponseWriter, r *http.Request) {
	available := true
	filter := domain.SearchFilter{
		Name:      r.URL.Query().Get("name"),
		Category:  r.URL.Query().Get("category"),
		Available: &available,
	}

	products, err := h.inventory.SearchProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("category search failed", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Filter handles GET /api/public/products/filter — the full conjunctive
// search. Absent parameters are simply not part of the conjunction.
func (h *PublicProductHandler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.SearchFilter{
		Name:     q.Get("name"),
		Category: q.Get("category"),
	}

	if raw := q.Get("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "minPrice must be a number"})
			return
		}
		filter.MinPrice = &v
	}
	if raw := q.Get("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "maxPrice must be a number"})
			return
		}
		filter.MaxPrice = &v
	}
	if raw := q.Get("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "available must be a boolean"})
			return
		}
		filter.Available = &v
	}

	products, err := h.inventory.SearchProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("filtered search failed", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Page handles GET /api/public/products/page?page=&size=
func (h *PublicProductHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := h.inventory.ListAvailablePaged(r.Context(), page, size)
	if err != nil {
		h.logger.Error("paged listing failed", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CategoryPage handles GET /api/public/products/category/{category}/page
func (h *PublicProductHandler) CategoryPage(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	page, size := pageParams(r)

	result, err := h.inventory.ListByCategoryPaged(r.Context(), category, true, page, size)
	if err != nil {
		h.logger.Error("paged category listing failed",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
