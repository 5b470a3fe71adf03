package backend

import (
	"context"
	"fmt"

	"shopcart/internal/model"
)

// ListProducts returns a page of the public catalogue.
func (c *Client) ListProducts(ctx context.Context, token string, query model.ProductQuery) (*model.ProductPage, error) {
	var page model.ProductPage
	if err := c.get(ctx, withQuery("/products", query.Values()), token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, token string, id int) (*model.Product, error) {
	var product model.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", id), token, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListCategories returns every category.
func (c *Client) ListCategories(ctx context.Context, token string) ([]model.Category, error) {
	var categories []model.Category
	if err := c.get(ctx, "/categories", token, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory returns a single category.
func (c *Client) GetCategory(ctx context.Context, token string, id int) (*model.Category, error) {
	var category model.Category
	if err := c.get(ctx, fmt.Sprintf("/categories/%d", id), token, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, token string, input model.CategoryInput) (*model.Category, error) {
	var category model.Category
	if err := c.post(ctx, "/categories", token, input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, token string, id int, input model.CategoryInput) (*model.Category, error) {
	var category model.Category
	if err := c.patch(ctx, fmt.Sprintf("/categories/%d", id), token, input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, token string, id int) error {
	return c.delete(ctx, fmt.Sprintf("/categories/%d", id), token)
}
