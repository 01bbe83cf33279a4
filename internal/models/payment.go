package models

import "time"

// Payment states
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
)

// DefaultCurrency is used when a payment request names none
const DefaultCurrency = "INR"

// Payment is the local record of a Razorpay payment order
type Payment struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"order_id"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	RazorpayOrderID string    `json:"razorpay_order_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// PaymentRequest is the payload for POST /api/payments/create
type PaymentRequest struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// PaymentOrder is returned to the browser to open the Razorpay checkout
type PaymentOrder struct {
	ID              string  `json:"id"`
	RazorpayOrderID string  `json:"razorpay_order_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Key             string  `json:"key"`
}

// PaymentVerification is the checkout callback payload
type PaymentVerification struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// VerificationResult is returned by POST /api/payments/verify
type VerificationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
