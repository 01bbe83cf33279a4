package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
)

func TestAuthService_Register(t *testing.T) {
	store := newTestStore(t)
	svc := NewAuthService(store.users, newTestIssuer(), false)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{
		Email:    "priya@example.com",
		Password: "correct-horse",
		FullName: "Priya Sharma",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != models.RoleUser {
		t.Errorf("default role = %s, want user", user.Role)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}

	tests := []struct {
		name    string
		req     models.RegisterRequest
		wantErr error
	}{
		{"duplicate email", models.RegisterRequest{Email: "priya@example.com", Password: "correct-horse", FullName: "P"}, repository.ErrEmailTaken},
		{"invalid email", models.RegisterRequest{Email: "not-an-email", Password: "correct-horse", FullName: "P"}, ErrInvalidRegistration},
		{"display-name email", models.RegisterRequest{Email: "Priya <p@example.com>", Password: "correct-horse", FullName: "P"}, ErrInvalidRegistration},
		{"short password", models.RegisterRequest{Email: "a@example.com", Password: "short", FullName: "A"}, ErrInvalidRegistration},
		{"missing name", models.RegisterRequest{Email: "a@example.com", Password: "correct-horse"}, ErrInvalidRegistration},
		{"unknown role", models.RegisterRequest{Email: "a@example.com", Password: "correct-horse", FullName: "A", Role: "owner"}, ErrInvalidRegistration},
		{"self-assigned admin", models.RegisterRequest{Email: "a@example.com", Password: "correct-horse", FullName: "A", Role: models.RoleAdmin}, ErrRoleNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_RegisterPrivilegedWhenAllowed(t *testing.T) {
	store := newTestStore(t)
	svc := NewAuthService(store.users, newTestIssuer(), true)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "ops@kalaasutra.in",
		Password: "correct-horse",
		FullName: "Ops",
		Role:     models.RoleEmployee,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != models.RoleEmployee {
		t.Errorf("role = %s, want employee", user.Role)
	}
}

func TestAuthService_Login(t *testing.T) {
	store := newTestStore(t)
	svc := NewAuthService(store.users, newTestIssuer(), false)
	ctx := context.Background()

	if _, err := svc.Register(ctx, models.RegisterRequest{Email: "priya@example.com", Password: "correct-horse", FullName: "Priya"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, err := svc.Login(ctx, "Priya@Example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token.TokenType != "bearer" || token.AccessToken == "" {
		t.Errorf("Login() = %+v", token)
	}

	claims, err := svc.Authenticate(token.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if claims.Email() != "priya@example.com" || claims.Role != models.RoleUser {
		t.Errorf("claims = %s/%s", claims.Email(), claims.Role)
	}

	if _, err := svc.Login(ctx, "priya@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown user) error = %v, want ErrInvalidCredentials", err)
	}
}
