package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// countingRepository records how often reads reach the underlying store
type countingRepository struct {
	ProductRepository
	lists int
	gets  int
}

func (c *countingRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	c.lists++
	return c.ProductRepository.List(ctx, filter)
}

func (c *countingRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	c.gets++
	return c.ProductRepository.GetByID(ctx, id)
}

func setupCachedRepository(t *testing.T) (*miniredis.Miniredis, *countingRepository, *CachedProductRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	counting := &countingRepository{ProductRepository: NewSQLProductRepository(newTestDB(t))}
	cached := NewCachedProductRepository(counting, client, time.Minute, logger.Discard())
	return mr, counting, cached
}

func TestCachedProductRepository_ListHitsCache(t *testing.T) {
	_, counting, cached := setupCachedRepository(t)
	ctx := context.Background()

	if _, err := cached.Create(ctx, models.ProductCreate{Name: "Custom Keychain", Category: "keychains", Price: 199}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		products, err := cached.List(ctx, models.ProductFilter{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(products) != 1 {
			t.Fatalf("List() returned %d products, want 1", len(products))
		}
	}

	if counting.lists != 1 {
		t.Errorf("underlying List called %d times, want 1", counting.lists)
	}
}

func TestCachedProductRepository_WritesInvalidate(t *testing.T) {
	_, counting, cached := setupCachedRepository(t)
	ctx := context.Background()

	p, err := cached.Create(ctx, models.ProductCreate{Name: "Premium Nameplate", Category: "nameplates", Price: 799})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := cached.GetByID(ctx, p.ID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if _, err := cached.GetByID(ctx, p.ID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if counting.gets != 1 {
		t.Fatalf("underlying GetByID called %d times, want 1", counting.gets)
	}

	price := 899.0
	if _, err := cached.Update(ctx, p.ID, models.ProductUpdate{Price: &price}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := cached.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Price != price {
		t.Errorf("GetByID() price = %v after update, want %v", got.Price, price)
	}
}

func TestCachedProductRepository_RedisDownFallsThrough(t *testing.T) {
	mr, counting, cached := setupCachedRepository(t)
	ctx := context.Background()

	if _, err := cached.Create(ctx, models.ProductCreate{Name: "Designer Water Bottle", Category: "bottles", Price: 499}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	mr.Close()

	products, err := cached.List(ctx, models.ProductFilter{})
	if err != nil {
		t.Fatalf("List() error = %v with redis down", err)
	}
	if len(products) != 1 {
		t.Errorf("List() returned %d products, want 1", len(products))
	}
	if counting.lists != 1 {
		t.Errorf("underlying List called %d times, want 1", counting.lists)
	}
}
