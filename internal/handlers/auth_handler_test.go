package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kalaasutra/storefront/internal/models"
)

func login(api *testAPI, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name           string
		body           models.RegisterRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "new customer",
			body:           models.RegisterRequest{Email: "asha@example.com", Password: "s3cret-pass", FullName: "Asha Rao"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate email",
			body:           models.RegisterRequest{Email: "ASHA@example.com", Password: "s3cret-pass", FullName: "Asha Again"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email already registered",
		},
		{
			name:           "invalid email",
			body:           models.RegisterRequest{Email: "not-an-email", Password: "s3cret-pass", FullName: "Nobody"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "short password",
			body:           models.RegisterRequest{Email: "short@example.com", Password: "abc", FullName: "Short"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown role",
			body:           models.RegisterRequest{Email: "root@example.com", Password: "s3cret-pass", FullName: "Root", Role: "root"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "admin self-signup",
			body:           models.RegisterRequest{Email: "boss@example.com", Password: "s3cret-pass", FullName: "Boss", Role: models.RoleAdmin},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedError != "" {
				if msg := errorMessage(t, w); msg != tt.expectedError {
					t.Errorf("expected error %q, got %q", tt.expectedError, msg)
				}
			}

			if w.Code == http.StatusCreated {
				if body := w.Body.String(); strings.Contains(body, "password") {
					t.Errorf("response leaks password field: %s", body)
				}
			}
		})
	}
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email: "asha@example.com", Password: "s3cret-pass", FullName: "Asha Rao",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected status 201, got %d", w.Code)
	}

	w = login(api, "asha@example.com", "s3cret-pass")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	token := decode[models.Token](t, w)
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Fatalf("unexpected token %+v", token)
	}

	// The issued token opens authenticated routes
	w = api.do(t, http.MethodGet, "/api/orders", token.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("orders with issued token: expected status 200, got %d", w.Code)
	}

	w = login(api, "asha@example.com", "wrong-pass")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected status 401, got %d", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("expected WWW-Authenticate Bearer, got %q", got)
	}
	if msg := errorMessage(t, w); msg != "Incorrect email or password" {
		t.Errorf("unexpected error %q", msg)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	api := newTestAPI(t)

	w := login(api, "", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	api := newTestAPI(t)

	// newTestAPI allows 3 attempts per minute
	for i := 0; i < 3; i++ {
		if w := login(api, "ghost@example.com", "whatever1"); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected status 401, got %d", i+1, w.Code)
		}
	}

	w := login(api, "ghost@example.com", "whatever1")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w.Code)
	}
}

func TestHealthAndRoot(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: expected status 200, got %d", w.Code)
	}
	if health := decode[HealthResponse](t, w); health.Status != "healthy" || health.Version != Version {
		t.Errorf("unexpected health response %+v", health)
	}

	w = api.do(t, http.MethodGet, "/", "", nil)
	if msg := decode[map[string]string](t, w)["message"]; msg != "Welcome to Kalaasutra E-commerce API" {
		t.Errorf("unexpected root message %q", msg)
	}

	w = api.do(t, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "kalaasutra_api_http_request_duration_seconds") {
		t.Errorf("metrics endpoint missing request histogram: %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected storefront origin to be allowed, got %q", got)
	}
}
