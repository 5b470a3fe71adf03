package service

import (
	"context"
	"testing"

	"shopcart/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ListProducts(t *testing.T) {
	ctx := context.Background()
	minPrice, maxPrice := 500.0, 100.0

	api := new(MockBackend)
	service := NewCatalogService(api, zerolog.Nop())

	expected := model.ProductQuery{
		Page:           1,
		Limit:          model.DefaultProductLimit,
		OrderBy:        "createdAt",
		OrderDirection: "desc",
		Search:         "kettle",
		MinPrice:       &maxPrice,
		MaxPrice:       &minPrice,
	}
	api.On("ListProducts", ctx, "", expected).Return(&model.ProductPage{}, nil)

	page, err := service.ListProducts(ctx, "", model.ProductQuery{
		OrderBy:  "popularity",
		Search:   "  kettle ",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
	})

	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	api.AssertExpectations(t)
}

func TestCatalogService_ListCategories(t *testing.T) {
	ctx := context.Background()
	api := new(MockBackend)
	service := NewCatalogService(api, zerolog.Nop())
	api.On("ListCategories", ctx, "token").Return([]model.Category{{ID: 1, Name: "Kitchen"}}, nil)

	categories, err := service.ListCategories(ctx, "token")

	require.NoError(t, err)
	assert.Len(t, categories, 1)
}
