package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/biv3k224/ecommerce/internal/service"
)

// AdminProductHandler serves the authenticated management endpoints. The
// JWT middleware has already verified the caller before these run, so the
// handlers see the whole catalog, available or not.
type AdminProductHandler struct {
	inventory *service.InventoryService
	logger    *slog.Logger
}

// NewAdminProductHandler creates a new admin product handler
func NewAdminProductHandler(inventory *service.InventoryService, logger *slog.Logger) *AdminProductHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AdminProductHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// List handles GET /api/admin/products
func (h *AdminProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/admin/products/{id}
func (h *AdminProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, err := h.inventory.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if product == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/admin/products
func (h *AdminProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("failed to decode create request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	product, err := h.inventory.CreateProduct(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/admin/products/{id}
func (h *AdminProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var input service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("failed to decode update request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	product, err := h.inventory.UpdateProduct(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/admin/products/{id}
func (h *AdminProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.inventory.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// ByCategory handles GET /api/admin/products/category/{category} and
// includes unavailable products, unlike the public variant.
func (h *AdminProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	products, err := h.inventory.ProductsByCategory(r.Context(), category, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// LowStock handles GET /api/admin/products/low-stock?threshold=10
func (h *AdminProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 10
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "threshold must be an integer"})
			return
		}
		threshold = v
	}

	products, err := h.inventory.LowStockProducts(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Search handles GET /api/admin/products/search?name= across the whole
// catalog.
func (h *AdminProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	products, err := h.inventory.SearchByName(r.Context(), name, false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Availability handles PATCH /api/admin/products/{id}/availability?available=
func (h *AdminProductHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	raw := r.URL.Query().Get("available")
	available, err := strconv.ParseBool(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "available must be a boolean"})
		return
	}

	product, err := h.inventory.SetAvailability(r.Context(), id, available)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("product availability changed",
		slog.String("product_id", id),
		slog.Bool("available", available),
	)
	writeJSON(w, http.StatusOK, product)
}

// CategoryStats handles GET /api/admin/products/stats/categories
func (h *AdminProductHandler) CategoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inventory.CategoryStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Page handles GET /api/admin/products/page?page=&size= over the whole
// catalog.
func (h *AdminProductHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := h.inventory.ListPaged(r.Context(), page, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
