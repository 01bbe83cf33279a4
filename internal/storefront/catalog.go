package storefront

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kalaasutra/storefront/internal/client"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// ProductLister is the catalog read the storefront needs
type ProductLister interface {
	List(ctx context.Context, opts client.ProductListOptions) ([]models.Product, error)
}

// Source says where a grid's products came from
type Source string

const (
	SourceAPI      Source = "api"
	SourceFallback Source = "fallback"
)

// Fallback reasons, used as the metric label
const (
	reasonError   = "error"
	reasonEmpty   = "empty"
	reasonTimeout = "timeout"
)

// Grid is the featured product grid of one page view
type Grid struct {
	Products []models.Product `json:"products"`
	Source   Source           `json:"source"`
}

// FallbackProducts is shown when the API has nothing to offer
func FallbackProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Custom Keychain", Category: "keychains", Price: 199, Description: "Personalized keychain with your name or special message"},
		{ID: "2", Name: "Designer Water Bottle", Category: "bottles", Price: 499, Description: "Eco-friendly bottle with custom designs and colors"},
		{ID: "3", Name: "Premium Nameplate", Category: "nameplates", Price: 799, Description: "Elegant nameplate for your door or desk"},
		{ID: "4", Name: "Luxury Keychain Set", Category: "keychains", Price: 399, Description: "Set of 2 premium keychains with 3D engraving"},
	}
}

// Catalog fetches the featured grid. Concurrent page views share one
// in-flight API call.
type Catalog struct {
	api       ProductLister
	timeout   time.Duration
	group     singleflight.Group
	logger    *slog.Logger
	fallbacks *prometheus.CounterVec
}

// NewCatalog creates a catalog and registers its fallback counter on reg
func NewCatalog(api ProductLister, timeout time.Duration, logger *slog.Logger, reg prometheus.Registerer) *Catalog {
	c := &Catalog{
		api:     api,
		timeout: timeout,
		logger:  logger,
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kalaasutra_storefront",
			Name:      "fallback_total",
			Help:      "Page views that rendered the fallback products, by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(c.fallbacks)
	return c
}

// Featured returns the API's products, or the fallback products when the
// API errors, times out or returns an empty list. It never fails.
func (c *Catalog) Featured(ctx context.Context) Grid {
	// The shared fetch must outlive any single caller's cancellation
	ch := c.group.DoChan("featured", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.api.List(fetchCtx, client.ProductListOptions{})
	})

	select {
	case <-ctx.Done():
		return c.fallback(reasonTimeout, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			reason := reasonError
			if errors.Is(res.Err, context.DeadlineExceeded) {
				reason = reasonTimeout
			}
			return c.fallback(reason, res.Err)
		}
		products, _ := res.Val.([]models.Product)
		if len(products) == 0 {
			return c.fallback(reasonEmpty, nil)
		}
		return Grid{Products: products, Source: SourceAPI}
	}
}

func (c *Catalog) fallback(reason string, err error) Grid {
	c.fallbacks.WithLabelValues(reason).Inc()
	if err != nil {
		c.logger.Warn("failed to load products, showing fallback", "reason", reason, "error", err)
	} else {
		c.logger.Info("no products from api, showing fallback")
	}
	return Grid{Products: FallbackProducts(), Source: SourceFallback}
}
