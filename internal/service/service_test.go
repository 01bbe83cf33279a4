package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kalaasutra/storefront/internal/auth"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
)

type testStore struct {
	products *repository.SQLProductRepository
	orders   *repository.SQLOrderRepository
	payments *repository.SQLPaymentRepository
	users    *repository.SQLUserRepository
	catalog  []models.Product
}

// newTestStore opens a temp sqlite database seeded with the default catalog
func newTestStore(t *testing.T) *testStore {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := &testStore{
		products: repository.NewSQLProductRepository(db),
		orders:   repository.NewSQLOrderRepository(db),
		payments: repository.NewSQLPaymentRepository(db),
		users:    repository.NewSQLUserRepository(db),
	}

	if _, err := repository.SeedProducts(ctx, s.products, repository.DefaultCatalog()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	s.catalog, err = s.products.List(ctx, models.ProductFilter{})
	if err != nil {
		t.Fatalf("failed to list catalog: %v", err)
	}
	return s
}

// product returns the seeded product with the given name
func (s *testStore) product(t *testing.T, name string) models.Product {
	t.Helper()
	for _, p := range s.catalog {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not seeded", name)
	return models.Product{}
}

func customer(email string) *auth.Claims {
	c := &auth.Claims{Role: models.RoleUser}
	c.Subject = email
	return c
}

func admin() *auth.Claims {
	c := &auth.Claims{Role: models.RoleAdmin}
	c.Subject = "admin@kalaasutra.in"
	return c
}

func newTestIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("service-test-secret-123", time.Hour)
}
