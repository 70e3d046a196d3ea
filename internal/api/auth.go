package api

import (
	"context"
	"net/http"

	"evscout/internal/model"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// validateResponse is returned by GET /auth/validate.
type validateResponse struct {
	Valid bool       `json:"valid"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its first session token.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateToken checks the stored token against the server and returns the
// refreshed user profile. ok is false when the server rejects the token.
func (c *Client) ValidateToken(ctx context.Context) (*model.User, bool, error) {
	var out validateResponse
	if err := c.do(ctx, http.MethodGet, "/auth/validate", nil, nil, &out); err != nil {
		if IsUnauthorized(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !out.Valid {
		return nil, false, nil
	}
	return &out.User, true, nil
}
