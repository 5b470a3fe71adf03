package service

import (
	"context"
	"fmt"
	"strings"

	"shopcart/internal/media"
	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxParallelUploads bounds concurrent image uploads for one product form.
const maxParallelUploads = 4

// merchantService implements MerchantService.
type merchantService struct {
	api       MerchantAPI
	media     media.Store
	maxImages int
	logger    zerolog.Logger
}

// NewMerchantService creates a new merchant service.
func NewMerchantService(api MerchantAPI, store media.Store, maxImages int, logger zerolog.Logger) MerchantService {
	return &merchantService{
		api:       api,
		media:     store,
		maxImages: maxImages,
		logger:    logger.With().Str("service", "merchant").Logger(),
	}
}

func (s *merchantService) ListProducts(ctx context.Context, sess *session.Session, query model.ProductQuery) (*model.ProductPage, error) {
	query.Normalise()
	return s.api.ListProducts(ctx, sess.Token, query)
}

func (s *merchantService) GetProduct(ctx context.Context, sess *session.Session, id int) (*model.Product, error) {
	return s.api.GetAdminProduct(ctx, sess.Token, id)
}

// CreateProduct uploads the images, marks the first as main unless one is
// already flagged, and creates the product.
func (s *merchantService) CreateProduct(ctx context.Context, sess *session.Session, input model.ProductInput, images []ImageUpload) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateProductFields(input.Price, input.Stock); err != nil {
		return nil, err
	}
	if err := model.Validate(input); err != nil {
		return nil, err
	}
	if len(input.Images)+len(images) > s.maxImages {
		return nil, model.ErrTooManyImages
	}

	uploaded, err := s.upload(ctx, images)
	if err != nil {
		return nil, err
	}
	input.Images = append(input.Images, uploaded...)
	ensureMainImage(input.Images)

	product, err := s.api.CreateAdminProduct(ctx, sess.Token, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("product_id", product.ID).
		Int("images", len(input.Images)).
		Int("user_id", sess.User.ID).
		Msg("product created")
	return product, nil
}

// UpdateProduct applies field edits, image removals and new uploads. The
// resulting image count is checked against the current product.
func (s *merchantService) UpdateProduct(ctx context.Context, sess *session.Session, id int, update model.ProductUpdate, images []ImageUpload) (*model.Product, error) {
	update.Name = strings.TrimSpace(update.Name)
	if err := validateProductFields(update.Price, update.Stock); err != nil {
		return nil, err
	}
	if err := model.Validate(update); err != nil {
		return nil, err
	}

	current, err := s.api.GetAdminProduct(ctx, sess.Token, id)
	if err != nil {
		return nil, err
	}

	removing := make(map[int]bool, len(update.RemoveImageIDs))
	for _, imageID := range update.RemoveImageIDs {
		removing[imageID] = true
	}
	kept := make([]model.ProductImage, 0, len(current.Images))
	for _, img := range current.Images {
		if !removing[img.ID] {
			kept = append(kept, img)
		}
	}
	if len(kept)+len(update.AddImages)+len(images) > s.maxImages {
		return nil, model.ErrTooManyImages
	}

	uploaded, err := s.upload(ctx, images)
	if err != nil {
		return nil, err
	}
	update.AddImages = append(update.AddImages, uploaded...)
	switch {
	case update.MainImageID != nil, hasMain(kept), hasMain(update.AddImages):
	case len(kept) > 0:
		// Kept images come before added ones, so the first kept image takes over.
		mainID := kept[0].ID
		update.MainImageID = &mainID
	default:
		ensureMainImage(update.AddImages)
	}

	product, err := s.api.UpdateAdminProduct(ctx, sess.Token, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("product_id", id).
		Int("added_images", len(update.AddImages)).
		Int("removed_images", len(update.RemoveImageIDs)).
		Msg("product updated")
	return product, nil
}

func (s *merchantService) DeleteProduct(ctx context.Context, sess *session.Session, id int) error {
	if err := s.api.DeleteAdminProduct(ctx, sess.Token, id); err != nil {
		return err
	}
	s.logger.Info().Int("product_id", id).Msg("product deleted")
	return nil
}

func (s *merchantService) UpdateStock(ctx context.Context, sess *session.Session, id, stock int) error {
	if stock < 0 {
		return model.ErrInvalidStock
	}
	if err := s.api.UpdateStock(ctx, sess.Token, id, stock); err != nil {
		return err
	}
	s.logger.Info().Int("product_id", id).Int("stock", stock).Msg("stock updated")
	return nil
}

func (s *merchantService) ListCategories(ctx context.Context, sess *session.Session) ([]model.Category, error) {
	categories, err := s.api.ListCategories(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

func (s *merchantService) GetCategory(ctx context.Context, sess *session.Session, id int) (*model.Category, error) {
	return s.api.GetCategory(ctx, sess.Token, id)
}

func (s *merchantService) CreateCategory(ctx context.Context, sess *session.Session, input model.CategoryInput) (*model.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := model.Validate(input); err != nil {
		return nil, err
	}
	return s.api.CreateCategory(ctx, sess.Token, input)
}

func (s *merchantService) UpdateCategory(ctx context.Context, sess *session.Session, id int, input model.CategoryInput) (*model.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := model.Validate(input); err != nil {
		return nil, err
	}
	return s.api.UpdateCategory(ctx, sess.Token, id, input)
}

func (s *merchantService) DeleteCategory(ctx context.Context, sess *session.Session, id int) error {
	return s.api.DeleteCategory(ctx, sess.Token, id)
}

func (s *merchantService) ListOrders(ctx context.Context, sess *session.Session, query model.OrderQuery) (*model.OrderPage, error) {
	if err := query.Normalise(); err != nil {
		return nil, err
	}
	page, err := s.api.ListAdminOrders(ctx, sess.Token, query)
	if err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []model.Order{}
	}
	return page, nil
}

func (s *merchantService) GetOrder(ctx context.Context, sess *session.Session, id int) (*model.Order, error) {
	return s.api.GetAdminOrder(ctx, sess.Token, id)
}

// UpdateOrderStatus falls back to re-reading the order when the backend
// does not echo it.
func (s *merchantService) UpdateOrderStatus(ctx context.Context, sess *session.Session, id int, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidOrderStatus
	}

	order, err := s.api.UpdateOrderStatus(ctx, sess.Token, id, status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		order, err = s.api.GetAdminOrder(ctx, sess.Token, id)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int("order_id", id).Str("status", string(status)).Msg("order status updated")
	return order, nil
}

func (s *merchantService) SoftDeleteOrder(ctx context.Context, sess *session.Session, id int) error {
	if err := s.api.SoftDeleteOrder(ctx, sess.Token, id); err != nil {
		return err
	}
	s.logger.Info().Int("order_id", id).Msg("order deleted")
	return nil
}

func (s *merchantService) RestoreOrder(ctx context.Context, sess *session.Session, id int) error {
	if err := s.api.RestoreOrder(ctx, sess.Token, id); err != nil {
		return err
	}
	s.logger.Info().Int("order_id", id).Msg("order restored")
	return nil
}

// upload stores images concurrently, keeping their submitted order.
func (s *merchantService) upload(ctx context.Context, images []ImageUpload) ([]model.ProductImage, error) {
	if len(images) == 0 {
		return nil, nil
	}

	result := make([]model.ProductImage, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, img := range images {
		g.Go(func() error {
			url, err := s.media.Put(gctx, img.Name, img.ContentType, img.Body)
			if err != nil {
				return fmt.Errorf("failed to store image %q: %w", img.Name, err)
			}
			result[i] = model.ProductImage{Name: img.Name, URL: url}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int("images", len(images)).Msg("image upload failed")
		return nil, err
	}
	return result, nil
}

// validateProductFields reports the price and stock rules with their own
// error codes before the generic validator runs.
func validateProductFields(price float64, stock int) error {
	if price <= 0 {
		return model.ErrInvalidProduct
	}
	if stock < 0 {
		return model.ErrInvalidStock
	}
	return nil
}

func hasMain(images []model.ProductImage) bool {
	for _, img := range images {
		if img.IsMain {
			return true
		}
	}
	return false
}

func ensureMainImage(images []model.ProductImage) {
	if len(images) > 0 && !hasMain(images) {
		images[0].IsMain = true
	}
}
