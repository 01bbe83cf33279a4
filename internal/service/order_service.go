package service

import (
	"context"
	"errors"
	"strings"

	"github.com/kalaasutra/storefront/internal/auth"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrMissingShipping   = errors.New("shipping address and contact number are required")
	ErrForbidden         = errors.New("not authorized to access this order")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status change not allowed")
)

// ProductLookup is the product access an order needs
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// OrderService handles order business logic
type OrderService struct {
	orders   repository.OrderRepository
	products ProductLookup
}

// NewOrderService creates a new order service
func NewOrderService(orders repository.OrderRepository, products ProductLookup) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
	}
}

// CreateOrder validates the request, prices every item from the catalog and
// stores the order as pending for the calling user.
func (s *OrderService) CreateOrder(ctx context.Context, caller *auth.Claims, req models.OrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.ContactNumber = strings.TrimSpace(req.ContactNumber)
	if req.ShippingAddress == "" || req.ContactNumber == "" {
		return nil, ErrMissingShipping
	}

	// Fetch each distinct product once
	productMap := make(map[string]*models.Product)
	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero

	for _, item := range req.Items {
		// An omitted quantity means one
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if item.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		if item.ProductID == "" {
			return nil, ErrInvalidProduct
		}

		product, seen := productMap[item.ProductID]
		if !seen {
			p, err := s.products.GetByID(ctx, item.ProductID)
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, ErrInvalidProduct
			}
			if err != nil {
				return nil, err
			}
			productMap[item.ProductID] = p
			product = p
		}

		item.Price = product.Price
		items = append(items, item)

		line := decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}

	return s.orders.Create(ctx, models.Order{
		UserID:          caller.Email(),
		Items:           items,
		TotalAmount:     total.Round(2).InexactFloat64(),
		ShippingAddress: req.ShippingAddress,
		ContactNumber:   req.ContactNumber,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentStatusPending,
	})
}

// GetOrder returns an order visible to the caller
func (s *OrderService) GetOrder(ctx context.Context, caller *auth.Claims, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, order) {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns the caller's own orders
func (s *OrderService) ListOrders(ctx context.Context, caller *auth.Claims, page models.Page) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, caller.Email(), page)
}

// UpdateOrder changes status and tracking number. Status changes must follow
// the order lifecycle.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	if update.Status == nil && update.TrackingNumber == nil {
		return nil, ErrEmptyUpdate
	}

	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, ErrInvalidStatus
		}

		current, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !current.Status.CanTransitionTo(*update.Status) {
			return nil, ErrInvalidTransition
		}
	}

	return s.orders.Update(ctx, id, models.OrderPatch{
		Status:         update.Status,
		TrackingNumber: update.TrackingNumber,
	})
}

func canAccess(caller *auth.Claims, order *models.Order) bool {
	return caller.IsAdmin() || order.UserID == caller.Email()
}
