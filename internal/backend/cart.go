package backend

import (
	"context"
	"fmt"

	"shopcart/internal/model"
)

// GetCart returns the cart of the token's user.
func (c *Client) GetCart(ctx context.Context, token string) (*model.Cart, error) {
	var cart model.Cart
	if err := c.get(ctx, "/cart", token, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem creates a line for a product.
func (c *Client) AddCartItem(ctx context.Context, token string, productID, quantity int) error {
	body := model.AddCartItem{ProductID: productID, Quantity: quantity}
	return c.post(ctx, "/cart", token, body, nil)
}

// SetCartItemQuantity overwrites a line's quantity.
func (c *Client) SetCartItemQuantity(ctx context.Context, token string, cartItemID, quantity int) error {
	body := model.SetCartItemQuantity{CartItemID: cartItemID, Quantity: quantity}
	return c.patch(ctx, "/cart/set", token, body, nil)
}

// IncrementCartItem raises a line's quantity by amount.
func (c *Client) IncrementCartItem(ctx context.Context, token string, cartItemID, amount int) error {
	body := model.ChangeCartItemAmount{CartItemID: cartItemID, Amount: amount}
	return c.patch(ctx, fmt.Sprintf("/cart/%d/increment", cartItemID), token, body, nil)
}

// DecrementCartItem lowers a line's quantity by amount.
func (c *Client) DecrementCartItem(ctx context.Context, token string, cartItemID, amount int) error {
	body := model.ChangeCartItemAmount{CartItemID: cartItemID, Amount: amount}
	return c.patch(ctx, fmt.Sprintf("/cart/%d/decrement", cartItemID), token, body, nil)
}

// RemoveCartItem deletes a line.
func (c *Client) RemoveCartItem(ctx context.Context, token string, cartItemID int) error {
	return c.delete(ctx, fmt.Sprintf("/cart/%d", cartItemID), token)
}

// ClearCart deletes every line.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.delete(ctx, "/cart", token)
}
