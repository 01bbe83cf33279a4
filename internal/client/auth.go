package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kalaasutra/storefront/internal/models"
)

// AuthAPI wraps /api/auth
type AuthAPI struct {
	c *Client
}

// Register creates an account. Role may be empty for a regular user.
func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := a.c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token. It does not store the
// token; callers save it to their TokenStore.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*models.Token, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	var token models.Token
	if err := a.c.doForm(ctx, "/api/auth/login", form, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
