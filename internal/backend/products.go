package backend

import (
	"context"
	"fmt"

	"shopcart/internal/model"
)

const adminProductsPath = "/admin-product-management/products"

// GetAdminProduct returns a product with its images for editing.
func (c *Client) GetAdminProduct(ctx context.Context, token string, id int) (*model.Product, error) {
	var product model.Product
	if err := c.get(ctx, fmt.Sprintf("%s/%d", adminProductsPath, id), token, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateAdminProduct adds a product.
func (c *Client) CreateAdminProduct(ctx context.Context, token string, input model.ProductInput) (*model.Product, error) {
	var product model.Product
	if err := c.post(ctx, adminProductsPath, token, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateAdminProduct edits a product and its image set.
func (c *Client) UpdateAdminProduct(ctx context.Context, token string, id int, update model.ProductUpdate) (*model.Product, error) {
	var product model.Product
	if err := c.patch(ctx, fmt.Sprintf("%s/%d", adminProductsPath, id), token, update, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateStock sets a product's stock level.
func (c *Client) UpdateStock(ctx context.Context, token string, id, stock int) error {
	return c.patch(ctx, fmt.Sprintf("%s/%d", adminProductsPath, id), token, model.StockUpdate{Stock: stock}, nil)
}

// DeleteAdminProduct removes a product.
func (c *Client) DeleteAdminProduct(ctx context.Context, token string, id int) error {
	return c.delete(ctx, fmt.Sprintf("%s/%d", adminProductsPath, id), token)
}
