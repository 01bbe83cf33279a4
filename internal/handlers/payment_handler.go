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

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger,
	}
}

// CreatePayment handles POST /api/payments/create
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Could not validate credentials", h.logger)
		return
	}

	var req models.PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode payment request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	payment, err := h.service.CreatePayment(r.Context(), caller, req)
	if err != nil {
		h.writePaymentError(w, req.OrderID, err)
		return
	}

	h.logger.Info("payment created", "payment_id", payment.ID, "order_id", req.OrderID, "amount", payment.Amount)
	WriteJSON(w, http.StatusOK, payment, h.logger)
}

// VerifyPayment handles POST /api/payments/verify
// - 200: signature valid, order confirmed
// - 400: Invalid payment signature
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentVerification
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode payment verification", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), req)
	if err != nil {
		h.writePaymentError(w, req.RazorpayOrderID, err)
		return
	}

	h.logger.Info("payment verified", "razorpay_order_id", req.RazorpayOrderID, "razorpay_payment_id", req.RazorpayPaymentID)
	WriteJSON(w, http.StatusOK, result, h.logger)
}

// GetPaymentForOrder handles GET /api/payments/order/{orderId}
func (h *PaymentHandler) GetPaymentForOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.FromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Could not validate credentials", h.logger)
		return
	}

	orderID := chi.URLParam(r, "orderId")
	payment, err := h.service.GetPaymentForOrder(r.Context(), caller, orderID)
	if err != nil {
		h.writePaymentError(w, orderID, err)
		return
	}

	WriteJSON(w, http.StatusOK, payment, h.logger)
}

func (h *PaymentHandler) writePaymentError(w http.ResponseWriter, orderID string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		h.logger.Warn("payment signature mismatch", "order_id", orderID)
		WriteError(w, http.StatusBadRequest, "Invalid payment signature", h.logger)
	case errors.Is(err, service.ErrNotConfigured):
		h.logger.Error("payment verification refused", "order_id", orderID, "error", err)
		WriteError(w, http.StatusServiceUnavailable, "Payments are not configured", h.logger)
	case errors.Is(err, service.ErrInvalidAmount):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, repository.ErrPaymentNotFound):
		WriteError(w, http.StatusNotFound, "Payment not found for this order", h.logger)
	case errors.Is(err, repository.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "Order not found", h.logger)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "Not authorized to access this order", h.logger)
	default:
		h.logger.Error("payment operation failed", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
