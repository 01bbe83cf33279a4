package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kalaasutra/storefront/internal/auth"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
	"github.com/kalaasutra/storefront/internal/service"
	"github.com/kalaasutra/storefront/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	testSecret    = "handler-test-secret-value"
	testKeyID     = "rzp_test_key"
	testKeySecret = "rzp_test_secret"
)

type testAPI struct {
	handler  http.Handler
	issuer   *auth.TokenIssuer
	products map[string]models.Product // by name
}

// newTestAPI serves the full router over a seeded temp sqlite database
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWithKey(t, testKeySecret)
}

// newTestAPIWithKey is newTestAPI with a chosen Razorpay key secret
func newTestAPIWithKey(t *testing.T, keySecret string) *testAPI {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	productRepo := repository.NewSQLProductRepository(db)
	orderRepo := repository.NewSQLOrderRepository(db)
	if _, err := repository.SeedProducts(ctx, productRepo, repository.DefaultCatalog()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	issuer := auth.NewTokenIssuer(testSecret, 30*time.Minute)
	api := &testAPI{
		issuer:   issuer,
		products: make(map[string]models.Product),
	}

	catalog, err := productRepo.List(ctx, models.ProductFilter{Limit: 100})
	if err != nil {
		t.Fatalf("failed to list catalog: %v", err)
	}
	for _, p := range catalog {
		api.products[p.Name] = p
	}

	api.handler = NewRouter(RouterOptions{
		Auth:           service.NewAuthService(repository.NewSQLUserRepository(db), issuer, false),
		Products:       service.NewProductService(productRepo),
		Orders:         service.NewOrderService(orderRepo, productRepo),
		Payments:       service.NewPaymentService(repository.NewSQLPaymentRepository(db), orderRepo, testKeyID, keySecret),
		DB:             db,
		AllowedOrigins: []string{"http://localhost:5173"},
		LoginRateLimit: 3,
		Registry:       prometheus.NewRegistry(),
		Logger:         logger.Discard(),
	})
	return api
}

func (a *testAPI) token(t *testing.T, email string, role models.Role) string {
	t.Helper()
	token, err := a.issuer.Issue(email, role)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

func (a *testAPI) product(t *testing.T, name string) models.Product {
	t.Helper()
	p, ok := a.products[name]
	if !ok {
		t.Fatalf("product %q not in catalog", name)
	}
	return p
}

// do sends a JSON request, authenticated when token is non-empty
func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}
