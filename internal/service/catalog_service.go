package service

import (
	"context"

	"shopcart/internal/model"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	api    CatalogAPI
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(api CatalogAPI, logger zerolog.Logger) CatalogService {
	return &catalogService{
		api:    api,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// ListProducts normalises paging, sorting and price bounds before asking
// the backend.
func (s *catalogService) ListProducts(ctx context.Context, token string, query model.ProductQuery) (*model.ProductPage, error) {
	query.Normalise()

	page, err := s.api.ListProducts(ctx, token, query)
	if err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []model.Product{}
	}

	s.logger.Debug().
		Int("page", query.Page).
		Int("limit", query.Limit).
		Int("returned", len(page.Data)).
		Msg("products listed")
	return page, nil
}

func (s *catalogService) GetProduct(ctx context.Context, token string, id int) (*model.Product, error) {
	return s.api.GetProduct(ctx, token, id)
}

func (s *catalogService) ListCategories(ctx context.Context, token string) ([]model.Category, error) {
	categories, err := s.api.ListCategories(ctx, token)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}
