package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kalaasutra/storefront/internal/models"
)

// PaymentsAPI wraps /api/payments
type PaymentsAPI struct {
	c *Client
}

// Create records a payment order. An empty currency lets the server default to INR.
func (p *PaymentsAPI) Create(ctx context.Context, orderID string, amount float64, currency string) (*models.PaymentOrder, error) {
	req := models.PaymentRequest{OrderID: orderID, Amount: amount, Currency: currency}

	var payment models.PaymentOrder
	if err := p.c.doJSON(ctx, http.MethodPost, "/api/payments/create", nil, req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Verify submits a checkout signature
func (p *PaymentsAPI) Verify(ctx context.Context, razorpayOrderID, razorpayPaymentID, razorpaySignature string) (*models.VerificationResult, error) {
	req := models.PaymentVerification{
		RazorpayOrderID:   razorpayOrderID,
		RazorpayPaymentID: razorpayPaymentID,
		RazorpaySignature: razorpaySignature,
	}

	var result models.VerificationResult
	if err := p.c.doJSON(ctx, http.MethodPost, "/api/payments/verify", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetForOrder returns the latest payment of an order
func (p *PaymentsAPI) GetForOrder(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := p.c.doJSON(ctx, http.MethodGet, "/api/payments/order/"+url.PathEscape(orderID), nil, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
