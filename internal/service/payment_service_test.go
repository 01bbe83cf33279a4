package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
)

const testKeySecret = "rzp_test_secret"

func placeOrder(t *testing.T, store *testStore, email string) *models.Order {
	t.Helper()
	order, err := NewOrderService(store.orders, store.products).CreateOrder(context.Background(), customer(email), models.OrderRequest{
		Items:           []models.OrderItem{{ProductID: store.product(t, "Custom Keychain").ID, Quantity: 2}},
		ShippingAddress: "12 MG Road, Pune",
		ContactNumber:   "9000000000",
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	return order
}

func TestPaymentService_CreatePayment(t *testing.T) {
	store := newTestStore(t)
	svc := NewPaymentService(store.payments, store.orders, "rzp_test_key", testKeySecret)
	order := placeOrder(t, store, "priya@example.com")
	ctx := context.Background()

	created, err := svc.CreatePayment(ctx, customer("priya@example.com"), models.PaymentRequest{OrderID: order.ID, Amount: 398})
	if err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}
	if created.RazorpayOrderID != "order_"+order.ID {
		t.Errorf("razorpay_order_id = %s", created.RazorpayOrderID)
	}
	if created.Currency != "INR" || created.Key != "rzp_test_key" || created.Amount != 398 {
		t.Errorf("CreatePayment() = %+v", created)
	}

	tests := []struct {
		name    string
		caller  string
		req     models.PaymentRequest
		wantErr error
	}{
		{"zero amount", "priya@example.com", models.PaymentRequest{OrderID: order.ID}, ErrInvalidAmount},
		{"unknown order", "priya@example.com", models.PaymentRequest{OrderID: "missing", Amount: 1}, repository.ErrOrderNotFound},
		{"someone else's order", "rahul@example.com", models.PaymentRequest{OrderID: order.ID, Amount: 1}, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePayment(ctx, customer(tt.caller), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreatePayment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentService_VerifyPayment(t *testing.T) {
	store := newTestStore(t)
	svc := NewPaymentService(store.payments, store.orders, "rzp_test_key", testKeySecret)
	order := placeOrder(t, store, "priya@example.com")
	ctx := context.Background()

	created, err := svc.CreatePayment(ctx, customer("priya@example.com"), models.PaymentRequest{OrderID: order.ID, Amount: 398, Currency: "inr"})
	if err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}

	_, err = svc.VerifyPayment(ctx, models.PaymentVerification{
		RazorpayOrderID:   created.RazorpayOrderID,
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: "deadbeef",
	})
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("VerifyPayment() with bad signature error = %v, want ErrInvalidSignature", err)
	}

	result, err := svc.VerifyPayment(ctx, models.PaymentVerification{
		RazorpayOrderID:   created.RazorpayOrderID,
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: Sign([]byte(testKeySecret), created.RazorpayOrderID, "pay_123"),
	})
	if err != nil {
		t.Fatalf("VerifyPayment() error = %v", err)
	}
	if !result.Success {
		t.Error("VerifyPayment() success = false")
	}

	paid, err := store.orders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if paid.PaymentStatus != models.PaymentStatusCompleted || paid.Status != models.OrderConfirmed {
		t.Errorf("order after verify = %s/%s, want confirmed/completed", paid.Status, paid.PaymentStatus)
	}

	payment, err := svc.GetPaymentForOrder(ctx, customer("priya@example.com"), order.ID)
	if err != nil {
		t.Fatalf("GetPaymentForOrder() error = %v", err)
	}
	if payment.Status != models.PaymentPaid || payment.Currency != "INR" {
		t.Errorf("payment after verify = %+v", payment)
	}

	if _, err := svc.GetPaymentForOrder(ctx, customer("rahul@example.com"), order.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger GetPaymentForOrder() error = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetPaymentForOrder(ctx, admin(), "missing"); !errors.Is(err, repository.ErrOrderNotFound) {
		t.Errorf("GetPaymentForOrder(missing) error = %v, want ErrOrderNotFound", err)
	}
}

func TestPaymentService_GetPaymentForOrder_ChecksAccessFirst(t *testing.T) {
	store := newTestStore(t)
	svc := NewPaymentService(store.payments, store.orders, "rzp_test_key", testKeySecret)
	order := placeOrder(t, store, "priya@example.com")
	ctx := context.Background()

	// No payment exists yet; a stranger must not learn that
	if _, err := svc.GetPaymentForOrder(ctx, customer("rahul@example.com"), order.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger GetPaymentForOrder() error = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetPaymentForOrder(ctx, customer("priya@example.com"), order.ID); !errors.Is(err, repository.ErrPaymentNotFound) {
		t.Errorf("owner GetPaymentForOrder() error = %v, want ErrPaymentNotFound", err)
	}
}

func TestPaymentService_VerifyPayment_RequiresSecret(t *testing.T) {
	store := newTestStore(t)
	svc := NewPaymentService(store.payments, store.orders, "", "")
	order := placeOrder(t, store, "victim@example.com")
	ctx := context.Background()

	razorpayOrderID := "order_" + order.ID
	_, err := svc.VerifyPayment(ctx, models.PaymentVerification{
		RazorpayOrderID:   razorpayOrderID,
		RazorpayPaymentID: "pay_fake",
		RazorpaySignature: Sign(nil, razorpayOrderID, "pay_fake"),
	})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("VerifyPayment() without secret error = %v, want ErrNotConfigured", err)
	}

	got, err := store.orders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != models.OrderPending || got.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("order after refused verify = %s/%s, want pending/pending", got.Status, got.PaymentStatus)
	}
}

func TestSign_KnownVector(t *testing.T) {
	// echo -n "order_1|pay_1" | openssl dgst -sha256 -hmac secret
	got := Sign([]byte("secret"), "order_1", "pay_1")
	if want := "52115a0d3400de9e86aade1f1b6eba9e8974604f4e267a9e9a16633a4c8dd2cb"; got != want {
		t.Fatalf("Sign() = %s, want %s", got, want)
	}
	if got == Sign([]byte("secret"), "order_1", "pay_2") {
		t.Error("Sign() ignores payment ID")
	}
}
