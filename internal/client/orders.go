package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kalaasutra/storefront/internal/models"
)

// OrdersAPI wraps /api/orders
type OrdersAPI struct {
	c *Client
}

// List returns the caller's orders. Zero skip or limit is omitted.
func (o *OrdersAPI) List(ctx context.Context, skip, limit int) ([]models.Order, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var orders []models.Order
	if err := o.c.doJSON(ctx, http.MethodGet, "/api/orders", q, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns one order
func (o *OrdersAPI) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := o.c.doJSON(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create places an order for the authenticated user
func (o *OrdersAPI) Create(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	var order models.Order
	if err := o.c.doJSON(ctx, http.MethodPost, "/api/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Update changes status or tracking number (admin)
func (o *OrdersAPI) Update(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error) {
	var order models.Order
	if err := o.c.doJSON(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id), nil, update, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
