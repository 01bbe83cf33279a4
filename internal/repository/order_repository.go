package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalaasutra/storefront/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, error)
	Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error)
}

// SQLOrderRepository implements OrderRepository on a SQL database.
// Items are stored as a JSON document per order.
type SQLOrderRepository struct {
	db *DB
}

// NewSQLOrderRepository creates an order repository backed by db
func NewSQLOrderRepository(db *DB) *SQLOrderRepository {
	return &SQLOrderRepository{db: db}
}

const orderColumns = `id, user_id, items, total_amount, shipping_address, contact_number, status, payment_status, tracking_number, created_at, updated_at`

// Create stores a new order with a generated ID and timestamps
func (r *SQLOrderRepository) Create(ctx context.Context, order models.Order) (*models.Order, error) {
	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now

	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.db.rebind(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		order.ID, order.UserID, string(items), order.TotalAmount, order.ShippingAddress, order.ContactNumber,
		string(order.Status), order.PaymentStatus, order.TrackingNumber, formatTime(order.CreatedAt), formatTime(order.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return &order, nil
}

// GetByID returns an order by its ID
func (r *SQLOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// ListByUser returns a user's orders, oldest first
func (r *SQLOrderRepository) ListByUser(ctx context.Context, userID string, page models.Page) ([]models.Order, error) {
	skip, limit := normalizePage(page.Skip, page.Limit)

	rows, err := r.db.QueryContext(ctx, r.db.rebind(`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?`),
		userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	return orders, nil
}

// Update applies the non-nil fields of patch and bumps updated_at
func (r *SQLOrderRepository) Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now().UTC())}

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.TrackingNumber != nil {
		sets = append(sets, "tracking_number = ?")
		args = append(args, *patch.TrackingNumber)
	}
	if patch.PaymentStatus != nil {
		sets = append(sets, "payment_status = ?")
		args = append(args, *patch.PaymentStatus)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, r.db.rebind(`UPDATE orders SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrOrderNotFound
	}

	return r.GetByID(ctx, id)
}

func scanOrder(s rowScanner) (*models.Order, error) {
	var (
		o                    models.Order
		items, status        string
		createdAt, updatedAt string
	)
	err := s.Scan(&o.ID, &o.UserID, &items, &o.TotalAmount, &o.ShippingAddress, &o.ContactNumber,
		&status, &o.PaymentStatus, &o.TrackingNumber, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items for order %s: %w", o.ID, err)
	}
	o.Status = models.OrderStatus(status)

	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
