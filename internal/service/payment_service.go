package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strings"

	"github.com/kalaasutra/storefront/internal/auth"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrNotConfigured    = errors.New("payments are not configured")
)

// razorpayOrderPrefix marks the local order ID inside a Razorpay order ID
const razorpayOrderPrefix = "order_"

// PaymentService records payment orders and verifies checkout signatures
type PaymentService struct {
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	keyID     string
	keySecret []byte
}

// NewPaymentService creates a new payment service
func NewPaymentService(payments repository.PaymentRepository, orders repository.OrderRepository, keyID, keySecret string) *PaymentService {
	return &PaymentService{
		payments:  payments,
		orders:    orders,
		keyID:     keyID,
		keySecret: []byte(keySecret),
	}
}

// CreatePayment records a payment order for one of the caller's orders
func (s *PaymentService) CreatePayment(ctx context.Context, caller *auth.Claims, req models.PaymentRequest) (*models.PaymentOrder, error) {
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, ErrInvalidAmount
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, order) {
		return nil, ErrForbidden
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}

	payment, err := s.payments.Create(ctx, models.Payment{
		OrderID:         order.ID,
		Amount:          req.Amount,
		Currency:        currency,
		Status:          models.PaymentCreated,
		RazorpayOrderID: razorpayOrderPrefix + order.ID,
	})
	if err != nil {
		return nil, err
	}

	return &models.PaymentOrder{
		ID:              payment.ID,
		RazorpayOrderID: payment.RazorpayOrderID,
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		Key:             s.keyID,
	}, nil
}

// VerifyPayment checks the checkout signature and marks the order paid and
// confirmed.
func (s *PaymentService) VerifyPayment(ctx context.Context, v models.PaymentVerification) (*models.VerificationResult, error) {
	// An empty key would let anyone sign
	if len(s.keySecret) == 0 {
		return nil, ErrNotConfigured
	}

	expected := Sign(s.keySecret, v.RazorpayOrderID, v.RazorpayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v.RazorpaySignature))) {
		return nil, ErrInvalidSignature
	}

	orderID := strings.TrimPrefix(v.RazorpayOrderID, razorpayOrderPrefix)
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	paid := models.PaymentStatusCompleted
	patch := models.OrderPatch{PaymentStatus: &paid}
	if order.Status.CanTransitionTo(models.OrderConfirmed) {
		confirmed := models.OrderConfirmed
		patch.Status = &confirmed
	}
	if _, err := s.orders.Update(ctx, orderID, patch); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByOrderID(ctx, orderID)
	switch {
	case err == nil:
		if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentPaid); err != nil {
			return nil, err
		}
	case !errors.Is(err, repository.ErrPaymentNotFound):
		return nil, err
	}

	return &models.VerificationResult{
		Success: true,
		Message: "Payment verified successfully",
	}, nil
}

// GetPaymentForOrder returns the latest payment recorded for an order
func (s *PaymentService) GetPaymentForOrder(ctx context.Context, caller *auth.Claims, orderID string) (*models.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, order) {
		return nil, ErrForbidden
	}
	return s.payments.GetByOrderID(ctx, orderID)
}

// Sign returns the Razorpay checkout signature: hex HMAC-SHA256 of
// "orderID|paymentID" keyed with the account secret.
func Sign(secret []byte, razorpayOrderID, razorpayPaymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(razorpayOrderID + "|" + razorpayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
