package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/redis/go-redis/v9"
)

const productsVersionKey = "products:version"

// CachedProductRepository serves product reads from Redis and falls through
// to the wrapped repository on a miss. Writes bump a version counter that is
// part of every cache key, so stale entries are never read again and simply
// expire.
type CachedProductRepository struct {
	next   ProductRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewCachedProductRepository wraps next with a Redis read-through cache
func NewCachedProductRepository(next ProductRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// List returns a cached listing when available
func (r *CachedProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	skip, limit := normalizePage(filter.Skip, filter.Limit)
	key := fmt.Sprintf("products:v%d:list:%s:%d:%d", r.version(ctx), filter.Category, skip, limit)

	var cached []models.Product
	if r.get(ctx, key, &cached) {
		return cached, nil
	}

	products, err := r.next.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, products)
	return products, nil
}

// GetByID returns a cached product when available
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	key := fmt.Sprintf("products:v%d:item:%s", r.version(ctx), id)

	var cached models.Product
	if r.get(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, product)
	return product, nil
}

// Create writes through and invalidates cached reads
func (r *CachedProductRepository) Create(ctx context.Context, in models.ProductCreate) (*models.Product, error) {
	product, err := r.next.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return product, nil
}

// Update writes through and invalidates cached reads
func (r *CachedProductRepository) Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	product, err := r.next.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return product, nil
}

// Delete writes through and invalidates cached reads
func (r *CachedProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Count is not cached
func (r *CachedProductRepository) Count(ctx context.Context) (int, error) {
	return r.next.Count(ctx)
}

func (r *CachedProductRepository) version(ctx context.Context) int64 {
	v, err := r.client.Get(ctx, productsVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Warn("redis get failed", "key", productsVersionKey, "error", err)
	}
	return v
}

func (r *CachedProductRepository) invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, productsVersionKey).Err(); err != nil {
		r.logger.Warn("redis invalidate failed", "error", err)
	}
}

func (r *CachedProductRepository) get(ctx context.Context, key string, dst any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		r.logger.Warn("redis get failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn("cached value unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (r *CachedProductRepository) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("json marshal failed", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", "key", key, "error", err)
	}
}
