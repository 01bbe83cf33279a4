package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kalaasutra/storefront/internal/models"
)

// ProductsAPI wraps /api/products
type ProductsAPI struct {
	c *Client
}

// ProductListOptions filters a product listing. Zero values are omitted.
type ProductListOptions struct {
	Category string
	Skip     int
	Limit    int
}

func (o ProductListOptions) values() url.Values {
	q := url.Values{}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.Skip > 0 {
		q.Set("skip", strconv.Itoa(o.Skip))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

// List returns products
func (p *ProductsAPI) List(ctx context.Context, opts ProductListOptions) ([]models.Product, error) {
	var products []models.Product
	if err := p.c.doJSON(ctx, http.MethodGet, "/api/products", opts.values(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns one product
func (p *ProductsAPI) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := p.c.doJSON(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create adds a product (admin)
func (p *ProductsAPI) Create(ctx context.Context, in models.ProductCreate) (*models.Product, error) {
	var product models.Product
	if err := p.c.doJSON(ctx, http.MethodPost, "/api/products", nil, in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update patches a product (admin)
func (p *ProductsAPI) Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	var product models.Product
	if err := p.c.doJSON(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), nil, update, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product (admin)
func (p *ProductsAPI) Delete(ctx context.Context, id string) error {
	return p.c.doJSON(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil, nil)
}
