package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded is what the fake API saw for one request
type recorded struct {
	Method        string
	Path          string
	Query         string
	ContentType   string
	Authorization string
	Body          string
}

// fakeAPI records every request and answers with status and body
func fakeAPI(t *testing.T, status int, body string) (*httptest.Server, func() []recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, recorded{
			Method:        r.Method,
			Path:          r.URL.EscapedPath(),
			Query:         r.URL.RawQuery,
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			Body:          string(b),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), seen...)
	}
}

func TestNew_BaseURL(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = New("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.BaseURL())

	_, err = New("ftp://api.example.com")
	assert.Error(t, err)
}

func TestRequests_Wire(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(c *Client) error
		response string
		method   string
		path     string
		query    string
		body     string
	}{
		{
			name: "register",
			call: func(c *Client) error {
				_, err := c.Auth.Register(ctx, models.RegisterRequest{Email: "a@example.com", Password: "pw", FullName: "A"})
				return err
			},
			method: http.MethodPost, path: "/api/auth/register",
			body: `{"email":"a@example.com","password":"pw","full_name":"A"}`,
		},
		{
			name: "products list without filters",
			call: func(c *Client) error {
				_, err := c.Products.List(ctx, ProductListOptions{})
				return err
			},
			response: `[]`,
			method:   http.MethodGet, path: "/api/products",
		},
		{
			name: "products list with filters",
			call: func(c *Client) error {
				_, err := c.Products.List(ctx, ProductListOptions{Category: "keychains", Skip: 2, Limit: 5})
				return err
			},
			response: `[]`,
			method:   http.MethodGet, path: "/api/products", query: "category=keychains&limit=5&skip=2",
		},
		{
			name: "product get escapes id",
			call: func(c *Client) error {
				_, err := c.Products.Get(ctx, "a b")
				return err
			},
			method: http.MethodGet, path: "/api/products/a%20b",
		},
		{
			name: "product create",
			call: func(c *Client) error {
				_, err := c.Products.Create(ctx, models.ProductCreate{Name: "Pen", Category: "pens", Price: 10})
				return err
			},
			method: http.MethodPost, path: "/api/products",
			body: `{"name":"Pen","category":"pens","price":10}`,
		},
		{
			name: "product update",
			call: func(c *Client) error {
				price := 12.5
				_, err := c.Products.Update(ctx, "p1", models.ProductUpdate{Price: &price})
				return err
			},
			method: http.MethodPut, path: "/api/products/p1", body: `{"price":12.5}`,
		},
		{
			name:   "product delete",
			call:   func(c *Client) error { return c.Products.Delete(ctx, "p1") },
			method: http.MethodDelete, path: "/api/products/p1",
		},
		{
			name: "orders list",
			call: func(c *Client) error {
				_, err := c.Orders.List(ctx, 0, 20)
				return err
			},
			response: `[]`,
			method:   http.MethodGet, path: "/api/orders", query: "limit=20",
		},
		{
			name: "order get",
			call: func(c *Client) error {
				_, err := c.Orders.Get(ctx, "o1")
				return err
			},
			method: http.MethodGet, path: "/api/orders/o1",
		},
		{
			name: "order create",
			call: func(c *Client) error {
				_, err := c.Orders.Create(ctx, models.OrderRequest{
					Items:           []models.OrderItem{{ProductID: "p1", Quantity: 2}},
					ShippingAddress: "addr",
					ContactNumber:   "123",
				})
				return err
			},
			method: http.MethodPost, path: "/api/orders",
			body: `{"items":[{"product_id":"p1","quantity":2,"price":0}],"shipping_address":"addr","contact_number":"123"}`,
		},
		{
			name: "order update",
			call: func(c *Client) error {
				status := models.OrderShipped
				_, err := c.Orders.Update(ctx, "o1", models.OrderUpdate{Status: &status})
				return err
			},
			method: http.MethodPut, path: "/api/orders/o1", body: `{"status":"shipped"}`,
		},
		{
			name: "payment create",
			call: func(c *Client) error {
				_, err := c.Payments.Create(ctx, "o1", 499, "")
				return err
			},
			method: http.MethodPost, path: "/api/payments/create", body: `{"order_id":"o1","amount":499}`,
		},
		{
			name: "payment verify",
			call: func(c *Client) error {
				_, err := c.Payments.Verify(ctx, "order_o1", "pay_1", "sig")
				return err
			},
			method: http.MethodPost, path: "/api/payments/verify",
			body: `{"razorpay_order_id":"order_o1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`,
		},
		{
			name: "payment for order",
			call: func(c *Client) error {
				_, err := c.Payments.GetForOrder(ctx, "o1")
				return err
			},
			method: http.MethodGet, path: "/api/payments/order/o1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := tt.response
			if response == "" {
				response = `{}`
			}
			srv, seen := fakeAPI(t, http.StatusOK, response)
			c, err := New(srv.URL)
			require.NoError(t, err)

			require.NoError(t, tt.call(c))
			require.Len(t, seen(), 1)

			got := seen()[0]
			assert.Equal(t, tt.method, got.Method)
			assert.Equal(t, tt.path, got.Path)
			assert.Equal(t, tt.query, got.Query)
			assert.Empty(t, got.Authorization)
			if tt.body != "" {
				assert.Equal(t, "application/json", got.ContentType)
				assert.JSONEq(t, tt.body, got.Body)
			} else {
				assert.Empty(t, got.ContentType, "body-less request must not declare a content type")
				assert.Empty(t, got.Body)
			}
		})
	}
}

func TestLogin_FormEncoded(t *testing.T) {
	srv, seen := fakeAPI(t, http.StatusOK, `{"access_token":"tok","token_type":"bearer"}`)
	c, err := New(srv.URL)
	require.NoError(t, err)

	token, err := c.Auth.Login(context.Background(), "a@example.com", "p&ss")
	require.NoError(t, err)
	assert.Equal(t, &models.Token{AccessToken: "tok", TokenType: "bearer"}, token)

	got := seen()[0]
	assert.Equal(t, "/api/auth/login", got.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.ContentType)
	assert.Equal(t, "password=p%26ss&username=a%40example.com", got.Body)
}

func TestToken_ReadBeforeEveryRequest(t *testing.T) {
	srv, seen := fakeAPI(t, http.StatusOK, `[]`)
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token"))
	c, err := New(srv.URL, WithTokenStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Orders.List(ctx, 0, 0)
	require.NoError(t, err)

	require.NoError(t, store.Save("first"))
	_, err = c.Orders.List(ctx, 0, 0)
	require.NoError(t, err)

	require.NoError(t, store.Save("second"))
	_, err = c.Orders.List(ctx, 0, 0)
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	_, err = c.Orders.List(ctx, 0, 0)
	require.NoError(t, err)

	var auths []string
	for _, r := range seen() {
		auths = append(auths, r.Authorization)
	}
	assert.Equal(t, []string{"", "Bearer first", "Bearer second", ""}, auths)
}

func TestStaticToken(t *testing.T) {
	srv, seen := fakeAPI(t, http.StatusOK, `{}`)
	c, err := New(srv.URL, WithTokenStore(StaticToken("abc")))
	require.NoError(t, err)

	_, err = c.Orders.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", seen()[0].Authorization)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "error field", status: http.StatusNotFound, body: `{"error":"Product not found"}`, wantMessage: "Product not found"},
		{name: "detail string", status: http.StatusUnauthorized, body: `{"detail":"Could not validate credentials"}`, wantMessage: "Could not validate credentials"},
		{name: "detail list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, wantMessage: `[{"msg":"field required"}]`},
		{name: "plain text", status: http.StatusBadGateway, body: "upstream down\n", wantMessage: "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeAPI(t, tt.status, tt.body)
			c, err := New(srv.URL)
			require.NoError(t, err)

			_, err = c.Products.Get(context.Background(), "x")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, string(apiErr.Body))
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestNoRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Products.List(context.Background(), ProductListOptions{})
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Products.List(context.Background(), ProductListOptions{})
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}

func TestDecodesResponse(t *testing.T) {
	want := []models.Product{{ID: "1", Name: "Custom Keychain", Category: "keychains", Price: 199}}
	body, err := json.Marshal(want)
	require.NoError(t, err)

	srv, _ := fakeAPI(t, http.StatusOK, string(body))
	c, err := New(srv.URL)
	require.NoError(t, err)

	got, err := c.Products.List(context.Background(), ProductListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Custom Keychain", got[0].Name)
	assert.Equal(t, 199.0, got[0].Price)
}
