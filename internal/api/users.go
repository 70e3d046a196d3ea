package api

import (
	"context"
	"net/http"

	"evscout/internal/model"
)

// Categories fetches the read-only category reference list.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// ProfileUpdate carries the mutable profile fields of PUT /users/profile.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// PasswordChange is the body of PUT /users/password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Profile fetches the logged-in user's profile.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies the given changes and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPut, "/users/profile", nil, upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, chg PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/users/password", nil, chg, nil)
}

// RegisteredEvents lists the events the user has registered for.
func (c *Client) RegisteredEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, http.MethodGet, "/users/events", nil, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
