package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalaasutra/storefront/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, in models.ProductCreate) (*models.Product, error)
	Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLProductRepository implements ProductRepository on a SQL database
type SQLProductRepository struct {
	db *DB
}

// NewSQLProductRepository creates a product repository backed by db
func NewSQLProductRepository(db *DB) *SQLProductRepository {
	return &SQLProductRepository{db: db}
}

const productColumns = `id, name, category, price, description, model_url, templates, created_at`

// List returns products ordered by creation time, optionally filtered by category
func (r *SQLProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	skip, limit := normalizePage(filter.Skip, filter.Limit)

	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY created_at, id LIMIT ? OFFSET ?`
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	return products, nil
}

// GetByID returns a product by its ID
func (r *SQLProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, r.db.rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// Create inserts a new product with a generated ID
func (r *SQLProductRepository) Create(ctx context.Context, in models.ProductCreate) (*models.Product, error) {
	p := &models.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Description: in.Description,
		ModelURL:    in.ModelURL,
		Templates:   models.NormalizeTemplates(in.Templates),
		CreatedAt:   time.Now().UTC(),
	}

	if err := r.insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLProductRepository) insert(ctx context.Context, p *models.Product) error {
	templates, err := json.Marshal(p.Templates)
	if err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.db.rebind(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Category, p.Price, p.Description, p.ModelURL, string(templates), formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update applies a partial update and returns the stored product
func (r *SQLProductRepository) Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(p)

	templates, err := json.Marshal(p.Templates)
	if err != nil {
		return nil, fmt.Errorf("failed to encode templates: %w", err)
	}

	res, err := r.db.ExecContext(ctx, r.db.rebind(`UPDATE products SET name = ?, category = ?, price = ?, description = ?, model_url = ?, templates = ? WHERE id = ?`),
		p.Name, p.Category, p.Price, p.Description, p.ModelURL, string(templates), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrProductNotFound
	}

	return p, nil
}

// Delete removes a product
func (r *SQLProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Count returns the number of stored products
func (r *SQLProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*models.Product, error) {
	var (
		p         models.Product
		templates string
		createdAt string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.ModelURL, &templates, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if err := json.Unmarshal([]byte(templates), &p.Templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates for product %s: %w", p.ID, err)
	}
	p.Templates = models.NormalizeTemplates(p.Templates)

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t

	return &p, nil
}

// DefaultCatalog is the launch catalog written to an empty database
func DefaultCatalog() []models.ProductCreate {
	gold := []models.ProductTemplate{{Font: models.DefaultTemplateFont, Color: models.DefaultTemplateColor}}
	return []models.ProductCreate{
		{Name: "Custom Keychain", Category: "keychains", Price: 199, Description: "Personalized keychain with your name or special message", Templates: gold},
		{Name: "Designer Water Bottle", Category: "bottles", Price: 499, Description: "Eco-friendly bottle with custom designs and colors", Templates: gold},
		{Name: "Premium Nameplate", Category: "nameplates", Price: 799, Description: "Elegant nameplate for your door or desk", Templates: gold},
		{Name: "Luxury Keychain Set", Category: "keychains", Price: 399, Description: "Set of 2 premium keychains with 3D engraving", Templates: gold},
	}
}

// SeedProducts inserts the given products when the repository is empty.
// It returns the number of products written.
func SeedProducts(ctx context.Context, repo ProductRepository, products []models.ProductCreate) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for i, p := range products {
		if _, err := repo.Create(ctx, p); err != nil {
			return i, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}
	return len(products), nil
}
