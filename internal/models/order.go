package models

import "time"

// OrderStatus tracks an order through production and delivery
type OrderStatus string

const (
	OrderPending      OrderStatus = "pending"
	OrderConfirmed    OrderStatus = "confirmed"
	OrderInProduction OrderStatus = "in_production"
	OrderShipped      OrderStatus = "shipped"
	OrderDelivered    OrderStatus = "delivered"
	OrderCancelled    OrderStatus = "cancelled"
)

// Payment states recorded on an order
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// orderTransitions lists the statuses reachable from each status.
// delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:      {OrderConfirmed, OrderCancelled},
	OrderConfirmed:    {OrderInProduction, OrderCancelled},
	OrderInProduction: {OrderShipped, OrderCancelled},
	OrderShipped:      {OrderDelivered},
}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderInProduction, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
// Staying in the same status is always allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Customization is the personalization a customer chose for an item
type Customization struct {
	Text  string `json:"text,omitempty"`
	Font  string `json:"font,omitempty"`
	Color string `json:"color,omitempty"`
}

// OrderItem represents a single line in an order
type OrderItem struct {
	ProductID     string         `json:"product_id"`
	Quantity      int            `json:"quantity"`
	Customization *Customization `json:"customization,omitempty"`
	Price         float64        `json:"price"`
}

// OrderRequest represents an incoming order
type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingAddress string      `json:"shipping_address"`
	ContactNumber   string      `json:"contact_number"`
}

// Order represents a placed order
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	ShippingAddress string      `json:"shipping_address"`
	ContactNumber   string      `json:"contact_number"`
	Status          OrderStatus `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	TrackingNumber  string      `json:"tracking_number,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderUpdate is the admin payload for PUT /api/orders/{id}
type OrderUpdate struct {
	Status         *OrderStatus `json:"status,omitempty"`
	TrackingNumber *string      `json:"tracking_number,omitempty"`
}

// OrderPatch is applied by the repository. PaymentStatus is only set by
// payment verification.
type OrderPatch struct {
	Status         *OrderStatus
	TrackingNumber *string
	PaymentStatus  *string
}

// Page is a skip/limit window
type Page struct {
	Skip  int
	Limit int
}
