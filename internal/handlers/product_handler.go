package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
	"github.com/kalaasutra/storefront/internal/service"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /api/products
// Supports ?category=, ?skip= and ?limit=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid query parameters", h.logger)
		return
	}

	products, err := h.service.ListProducts(r.Context(), models.ProductFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Skip:     page.Skip,
		Limit:    page.Limit,
	})
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/products/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		h.logger.Warn("product ID is required")
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeProductError(w, productID, err)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// CreateProduct handles POST /api/products (admin only)
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductCreate
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode product", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeProductError(w, "", err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "category", product.Category)
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// UpdateProduct handles PUT /api/products/{productId} (admin only)
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req models.ProductUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode product update", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), productID, req)
	if err != nil {
		h.writeProductError(w, productID, err)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// DeleteProduct handles DELETE /api/products/{productId} (admin only)
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.service.DeleteProduct(r.Context(), productID); err != nil {
		h.writeProductError(w, productID, err)
		return
	}

	h.logger.Info("product deleted", "product_id", productID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) writeProductError(w http.ResponseWriter, productID string, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		h.logger.Info("product not found", "product_id", productID)
		WriteError(w, http.StatusNotFound, "Product not found", h.logger)
	case errors.Is(err, service.ErrInvalidProductData), errors.Is(err, service.ErrEmptyUpdate):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error("product operation failed", "product_id", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
