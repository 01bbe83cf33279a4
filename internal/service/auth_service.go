package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/kalaasutra/storefront/internal/auth"
	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
)

var (
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrRoleNotAllowed      = errors.New("role cannot be self-assigned")
	ErrInvalidCredentials  = errors.New("incorrect email or password")
)

// MinPasswordLength is enforced at registration
const MinPasswordLength = 8

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoO5X8o4Y5p2S3zQJH6c4o8b1o1QmE9W5e"

// AuthService registers users and issues access tokens
type AuthService struct {
	users                 repository.UserRepository
	tokens                *auth.TokenIssuer
	allowPrivilegedSignup bool
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, allowPrivilegedSignup bool) *AuthService {
	return &AuthService{
		users:                 users,
		tokens:                tokens,
		allowPrivilegedSignup: allowPrivilegedSignup,
	}
}

// Register validates and stores a new user
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil || addr.Address != strings.TrimSpace(req.Email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidRegistration)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, MinPasswordLength)
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidRegistration)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidRegistration, role)
	}
	if role != models.RoleUser && !s.allowPrivilegedSignup {
		return nil, ErrRoleNotAllowed
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.users.Create(ctx, models.User{
		Email:        addr.Address,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
	})
}

// Login checks credentials and returns a bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Token, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		auth.CheckPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &models.Token{AccessToken: token, TokenType: "bearer"}, nil
}

// Authenticate returns the claims of a valid access token
func (s *AuthService) Authenticate(token string) (*auth.Claims, error) {
	return s.tokens.Parse(token)
}
