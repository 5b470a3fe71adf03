package service

import (
	"context"
	"fmt"

	"shopcart/internal/backend"
	"shopcart/internal/cart"
	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxParallelRemovals bounds concurrent line deletions after a purchase.
const maxParallelRemovals = 4

// cartService implements CartService.
type cartService struct {
	api    CartAPI
	cache  *cart.Cache
	policy model.TotalsPolicy
	logger zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(api CartAPI, cache *cart.Cache, policy model.TotalsPolicy, logger zerolog.Logger) CartService {
	return &cartService{
		api:    api,
		cache:  cache,
		policy: policy,
		logger: logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, sess *session.Session) (*model.CartView, error) {
	if cached, ok := s.cache.Get(sess.ID); ok {
		return s.view(cached), nil
	}
	c, err := s.fetch(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// AddOrUpdate reconciles against the current cart: an existing line for the
// product is incremented, otherwise a new line is created. Concurrent
// callers can race; the backend has the final word.
func (s *cartService) AddOrUpdate(ctx context.Context, sess *session.Session, productID, quantity int) (*model.CartView, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	if err := model.Validate(model.AddCartItem{ProductID: productID, Quantity: quantity}); err != nil {
		return nil, err
	}

	current, err := s.fetch(ctx, sess)
	if err != nil {
		return nil, err
	}

	if item, ok := current.FindByProduct(productID); ok {
		s.logger.Debug().
			Int("product_id", productID).
			Int("cart_item_id", item.CartItemID).
			Int("quantity", quantity).
			Msg("incrementing existing cart line")
		err = s.api.IncrementCartItem(ctx, sess.Token, item.CartItemID, quantity)
	} else {
		s.logger.Debug().
			Int("product_id", productID).
			Int("quantity", quantity).
			Msg("adding new cart line")
		err = s.api.AddCartItem(ctx, sess.Token, productID, quantity)
	}
	return s.afterMutation(ctx, sess, err)
}

func (s *cartService) SetQuantity(ctx context.Context, sess *session.Session, cartItemID, quantity int) (*model.CartView, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	err := s.api.SetCartItemQuantity(ctx, sess.Token, cartItemID, quantity)
	return s.afterMutation(ctx, sess, err)
}

func (s *cartService) Increment(ctx context.Context, sess *session.Session, cartItemID, amount int) (*model.CartView, error) {
	if amount < 1 {
		return nil, model.ErrInvalidQuantity
	}
	err := s.api.IncrementCartItem(ctx, sess.Token, cartItemID, amount)
	return s.afterMutation(ctx, sess, err)
}

// Decrement refuses to take a line below one; removal is explicit.
func (s *cartService) Decrement(ctx context.Context, sess *session.Session, cartItemID, amount int) (*model.CartView, error) {
	if amount < 1 {
		return nil, model.ErrInvalidQuantity
	}

	current, err := s.fetch(ctx, sess)
	if err != nil {
		return nil, err
	}
	item, ok := current.FindItem(cartItemID)
	if !ok {
		return nil, model.ErrCartItemNotFound
	}
	if item.Quantity-amount < 1 {
		return nil, model.ErrQuantityBelowOne
	}

	err = s.api.DecrementCartItem(ctx, sess.Token, cartItemID, amount)
	return s.afterMutation(ctx, sess, err)
}

func (s *cartService) Remove(ctx context.Context, sess *session.Session, cartItemID int) (*model.CartView, error) {
	err := s.api.RemoveCartItem(ctx, sess.Token, cartItemID)
	if backend.IsNotFound(err) {
		err = model.ErrCartItemNotFound
	}
	return s.afterMutation(ctx, sess, err)
}

func (s *cartService) Clear(ctx context.Context, sess *session.Session) error {
	defer s.cache.Invalidate(sess.ID)
	if err := s.api.ClearCart(ctx, sess.Token); err != nil {
		return err
	}
	s.logger.Info().Int("user_id", sess.User.ID).Msg("cart cleared")
	return nil
}

func (s *cartService) RemoveItems(ctx context.Context, sess *session.Session, cartItemIDs []int64) error {
	defer s.cache.Invalidate(sess.ID)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRemovals)
	for _, id := range cartItemIDs {
		g.Go(func() error {
			err := s.api.RemoveCartItem(gctx, sess.Token, int(id))
			if err != nil && !backend.IsNotFound(err) {
				return fmt.Errorf("failed to remove cart item %d: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int("count", len(cartItemIDs)).Msg("failed to remove purchased cart items")
		return err
	}

	s.logger.Info().Int("count", len(cartItemIDs)).Msg("purchased cart items removed")
	return nil
}

// fetch loads the cart from the backend and refreshes the cache.
func (s *cartService) fetch(ctx context.Context, sess *session.Session) (*model.Cart, error) {
	c, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	s.cache.Set(sess.ID, c)
	return c, nil
}

// afterMutation drops the cached cart and returns the fresh one.
func (s *cartService) afterMutation(ctx context.Context, sess *session.Session, err error) (*model.CartView, error) {
	s.cache.Invalidate(sess.ID)
	if err != nil {
		return nil, err
	}
	c, err := s.fetch(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *cartService) view(c *model.Cart) *model.CartView {
	return &model.CartView{
		Cart:   *c,
		Totals: model.ComputeTotals(c.Items, s.policy),
	}
}
