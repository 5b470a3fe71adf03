package backend

import (
	"context"
	"fmt"
	"net/url"

	"shopcart/internal/model"
)

// Register creates an account.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var user model.User
	if err := c.post(ctx, "/auth/register", "", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a backend token.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	var result model.LoginResult
	if err := c.post(ctx, "/auth/login", "", req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("backend login returned no token")
	}
	return &result, nil
}

// ForgotPassword asks the backend to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*model.MessageResponse, error) {
	var resp model.MessageResponse
	body := model.ForgotPasswordRequest{Email: email}
	if err := c.post(ctx, "/auth/forgot-password", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword completes a reset with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (*model.MessageResponse, error) {
	var resp model.MessageResponse
	body := struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}{Token: token, NewPassword: newPassword}
	if err := c.patch(ctx, "/auth/reset-password", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile returns the user behind token.
func (c *Client) Profile(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, "/user/profile", token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, token string, userID int) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", userID), token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser edits a user's profile fields.
func (c *Client) UpdateUser(ctx context.Context, token string, userID int, update model.ProfileUpdate) (*model.User, error) {
	var user model.User
	if err := c.patch(ctx, fmt.Sprintf("/users/%d", userID), token, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the password of the token's user.
func (c *Client) ChangePassword(ctx context.Context, token string, req model.ChangePasswordRequest) error {
	return c.patch(ctx, "/users/change-password", token, req, nil)
}

// ListUserOrders returns a page of the user's orders.
func (c *Client) ListUserOrders(ctx context.Context, token string, userID, page, pageSize int) (*model.OrderPage, error) {
	values := url.Values{}
	values.Set("page", fmt.Sprint(page))
	values.Set("pageSize", fmt.Sprint(pageSize))

	var result model.OrderPage
	if err := c.get(ctx, withQuery(fmt.Sprintf("/user-orders/%d", userID), values), token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
