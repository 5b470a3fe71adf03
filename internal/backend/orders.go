package backend

import (
	"context"
	"fmt"
	"net/url"

	"shopcart/internal/model"
)

// CreateOrder records a purchase for the token's user.
func (c *Client) CreateOrder(ctx context.Context, token string, req model.OrderRequest) (*model.Order, error) {
	var resp envelope[model.Order]
	if err := c.post(ctx, "/user-orders", token, req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("backend created an order without returning it")
	}
	return resp.Data, nil
}

// CompleteOrder marks a paid order as completed.
func (c *Client) CompleteOrder(ctx context.Context, token string, orderID int) error {
	return c.patch(ctx, fmt.Sprintf("/user-orders/%d", orderID), token, nil, nil)
}

// ListAdminOrders returns a page of all orders for the merchant surface.
func (c *Client) ListAdminOrders(ctx context.Context, token string, query model.OrderQuery) (*model.OrderPage, error) {
	var page model.OrderPage
	if err := c.get(ctx, withQuery("/admin-order-management", query.Values()), token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAdminOrder returns one order with its items, user and payment.
func (c *Client) GetAdminOrder(ctx context.Context, token string, id int) (*model.Order, error) {
	var order model.Order
	if err := c.get(ctx, fmt.Sprintf("/admin-order-management/%d", id), token, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order to status. The backend may answer with
// the updated order wrapped in data; nil is returned when it does not.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id int, status model.OrderStatus) (*model.Order, error) {
	var resp envelope[model.Order]
	body := model.StatusUpdate{Status: status}
	if err := c.patch(ctx, fmt.Sprintf("/admin-order-management/%d/status", id), token, body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SoftDeleteOrder hides an order from listings.
func (c *Client) SoftDeleteOrder(ctx context.Context, token string, id int) error {
	return c.patch(ctx, fmt.Sprintf("/admin-order-management/%d/delete", id), token, nil, nil)
}

// RestoreOrder undoes a soft delete.
func (c *Client) RestoreOrder(ctx context.Context, token string, id int) error {
	return c.patch(ctx, fmt.Sprintf("/admin-order-management/%d/restore", id), token, nil, nil)
}

// Revenue returns the revenue series for period (day, week or month).
func (c *Client) Revenue(ctx context.Context, token, period string) (*model.RevenueReport, error) {
	var report model.RevenueReport
	path := withQuery("/admin-dashboard/revenue", url.Values{"period": {period}})
	if err := c.get(ctx, path, token, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CategorySales returns per-category sales for period (day, month or year).
func (c *Client) CategorySales(ctx context.Context, token, period string) (*model.CategorySalesReport, error) {
	var report model.CategorySalesReport
	path := withQuery("/admin-dashboard/category-sales", url.Values{"period": {period}})
	if err := c.get(ctx, path, token, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
