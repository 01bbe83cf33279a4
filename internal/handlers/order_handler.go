package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kalaasutra/storefront/internal/auth"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
	"github.com/kalaasutra/storefront/internal/service"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// CreateOrder handles POST /api/orders
// - 201: order created for the caller
// - 400: invalid input
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Could not validate credentials", h.logger)
		return
	}

	var req models.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), caller, req)
	if err != nil {
		h.writeOrderError(w, "", err)
		return
	}

	h.logger.Info("order created",
		"order_id", order.ID,
		"user_id", order.UserID,
		"items_count", len(order.Items),
		"total_amount", order.TotalAmount,
	)
	WriteJSON(w, http.StatusCreated, order, h.logger)
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Could not validate credentials", h.logger)
		return
	}

	page, err := parsePage(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid query parameters", h.logger)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), caller, page)
	if err != nil {
		h.writeOrderError(w, "", err)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.logger)
}

// GetOrder handles GET /api/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Could not validate credentials", h.logger)
		return
	}

	orderID := chi.URLParam(r, "orderId")
	order, err := h.service.GetOrder(r.Context(), caller, orderID)
	if err != nil {
		h.writeOrderError(w, orderID, err)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.logger)
}

// UpdateOrder handles PUT /api/orders/{orderId} (admin only)
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.OrderUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode order update", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), orderID, req)
	if err != nil {
		h.writeOrderError(w, orderID, err)
		return
	}

	h.logger.Info("order updated", "order_id", order.ID, "status", order.Status)
	WriteJSON(w, http.StatusOK, order, h.logger)
}

func (h *OrderHandler) writeOrderError(w http.ResponseWriter, orderID string, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "Order not found", h.logger)
	case errors.Is(err, service.ErrForbidden):
		h.logger.Warn("order access denied", "order_id", orderID)
		WriteError(w, http.StatusForbidden, "Not authorized to access this order", h.logger)
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrMissingShipping),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrEmptyUpdate):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error("order operation failed", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
