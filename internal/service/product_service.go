package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
)

var (
	ErrInvalidProductData = errors.New("invalid product data")
	ErrEmptyUpdate        = errors.New("no fields to update")
)

// ProductService handles business logic for products
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns products matching the filter. Categories are stored
// lowercased, so the filter is matched case-insensitively.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Category = normalizeCategory(filter.Category)
	return s.repo.List(ctx, filter)
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and stores a new product
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductCreate) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = normalizeCategory(in.Category)

	if err := validateProductFields(&in.Name, &in.Category, &in.Price); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

// UpdateProduct applies a partial update
func (s *ProductService) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	if update.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
	}
	if update.Category != nil {
		normalized := normalizeCategory(*update.Category)
		update.Category = &normalized
	}

	if err := validateProductFields(update.Name, update.Category, update.Price); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, update)
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// validateProductFields checks whichever fields are present
func validateProductFields(name, category *string, price *float64) error {
	if name != nil && *name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProductData)
	}
	if category != nil && *category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidProductData)
	}
	if price != nil && (*price < 0 || math.IsNaN(*price) || math.IsInf(*price, 0)) {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidProductData)
	}
	return nil
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
