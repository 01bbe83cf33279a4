package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalaasutra/storefront/internal/models"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment models.Payment) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// SQLPaymentRepository implements PaymentRepository on a SQL database
type SQLPaymentRepository struct {
	db *DB
}

// NewSQLPaymentRepository creates a payment repository backed by db
func NewSQLPaymentRepository(db *DB) *SQLPaymentRepository {
	return &SQLPaymentRepository{db: db}
}

// Create stores a payment record with a generated ID
func (r *SQLPaymentRepository) Create(ctx context.Context, payment models.Payment) (*models.Payment, error) {
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, r.db.rebind(`INSERT INTO payments (id, order_id, amount, currency, status, razorpay_order_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		payment.ID, payment.OrderID, payment.Amount, payment.Currency, payment.Status, payment.RazorpayOrderID, formatTime(payment.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	return &payment, nil
}

// GetByOrderID returns the most recent payment created for an order
func (r *SQLPaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var (
		p         models.Payment
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT id, order_id, amount, currency, status, razorpay_order_id, created_at FROM payments WHERE order_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`), orderID).
		Scan(&p.ID, &p.OrderID, &p.Amount, &p.Currency, &p.Status, &p.RazorpayOrderID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatus sets the status of a payment
func (r *SQLPaymentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`UPDATE payments SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
