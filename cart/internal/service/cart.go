package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/farmstand/farmstand/cart/internal/otel"
	"github.com/farmstand/farmstand/cart/internal/repository"
	"github.com/farmstand/farmstand/cart/pkg/response"
	inErrors "github.com/farmstand/farmstand/internal/errors"
	"github.com/farmstand/farmstand/internal/log"
)

const (
	defaultFarmName    = "Unknown Farm"
	defaultProductUnit = "Per kg"
)

// CartRepository is the store access the aggregator needs. The pgx
// implementation lives in cart/internal/repository; tests substitute an
// in-memory one.
type CartRepository interface {
	FindCartItemsByUserId(c context.Context, userID uuid.UUID) ([]repository.EnrichedCartItem, error)
	FindCartItemByUserIdAndProductId(c context.Context, userID uuid.UUID, productID uuid.UUID) (repository.CartItem, error)
	InsertCartItem(c context.Context, param repository.InsertCartItemParams) (repository.CartItem, error)
	UpdateCartItemQuantity(c context.Context, cartItemID uuid.UUID, quantity int32) error
	DeleteCartItem(c context.Context, cartItemID uuid.UUID) error
	DeleteCartItemsByUserId(c context.Context, userID uuid.UUID) error
}

// CartService keeps a user's cart in sync with the store. The store is the
// sole source of truth: every read refetches, no state is held between
// calls.
type CartService struct {
	carts CartRepository
}

func NewCartService(carts CartRepository) CartService {
	return CartService{carts: carts}
}

// GetCartItems returns the user's cart lines enriched with live product
// data. It never fails: store errors are logged and an empty cart is
// returned so listing screens stay usable.
func (s CartService) GetCartItems(c context.Context, userID uuid.UUID) []response.CartItem {
	c, span := otel.Tracer.Start(c, "CartService GetCartItems")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCartItems").
		Str(log.KeyUserID, userID.String()).
		Logger()

	if userID == uuid.Nil {
		logger.Info().Msg("no authenticated user, returning empty cart")
		return []response.CartItem{}
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart items").Logger()
	logger.Info().Msg("finding cart items")
	items, err := s.carts.FindCartItemsByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return []response.CartItem{}
	}
	logger.Info().Msgf("found %d cart items", len(items))

	cartItems := make([]response.CartItem, len(items))
	for i, item := range items {
		cartItems[i] = newCartItem(item)
	}
	return cartItems
}

// AddToCart merges into an existing line for the same product instead of
// creating a duplicate: the quantities are summed.
func (s CartService) AddToCart(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
	quantity int32,
) error {
	c, span := otel.Tracer.Start(c, "CartService AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddToCart").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()

	if userID == uuid.Nil {
		inErrors.HandleError(inErrors.ErrUnauthenticated, span)
		logger.Error().
			Err(inErrors.ErrUnauthenticated).
			Msg(inErrors.ErrUnauthenticated.Error())
		return inErrors.ErrUnauthenticated
	}
	if quantity < 1 {
		quantity = 1
	}

	logger = logger.With().Str(log.KeyProcess, "finding existing cart item").Logger()
	logger.Info().Msg("finding existing cart item")
	existing, err := s.carts.FindCartItemByUserIdAndProductId(c, userID, productID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding existing cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	if err == nil {
		logger = logger.With().Str(log.KeyProcess, "incrementing quantity").Logger()
		logger.Info().
			Int32("mergedQuantity", existing.Quantity+quantity).
			Msg("product already in cart, incrementing quantity")
		err = s.carts.UpdateCartItemQuantity(c, existing.ID, existing.Quantity+quantity)
		if err != nil {
			err = fmt.Errorf("failed incrementing cart item quantity with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		logger.Info().Msg("incremented quantity")
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "inserting cart item").Logger()
	logger.Info().Msg("product not in cart, inserting new cart item")
	_, err = s.carts.InsertCartItem(c, repository.InsertCartItemParams{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("inserted cart item")

	return nil
}

// UpdateQuantity sets the stored quantity directly, last write wins. A
// quantity of zero or below collapses the line entirely, identical to
// RemoveFromCart.
func (s CartService) UpdateQuantity(
	c context.Context,
	cartItemID uuid.UUID,
	quantity int32,
) error {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyCartItemID, cartItemID.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()

	if quantity <= 0 {
		logger.Info().Msg("quantity dropped to zero, removing cart item")
		c = logger.WithContext(c)
		return s.RemoveFromCart(c, cartItemID)
	}

	logger = logger.With().Str(log.KeyProcess, "updating quantity").Logger()
	logger.Info().Msg("updating quantity")
	err := s.carts.UpdateCartItemQuantity(c, cartItemID, quantity)
	if err != nil {
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("updated quantity")

	return nil
}

// RemoveFromCart is idempotent: deleting an id that no longer exists
// succeeds.
func (s CartService) RemoveFromCart(c context.Context, cartItemID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveFromCart").
		Str(log.KeyCartItemID, cartItemID.String()).
		Str(log.KeyProcess, "deleting cart item").
		Logger()

	logger.Info().Msg("deleting cart item")
	err := s.carts.DeleteCartItem(c, cartItemID)
	if err != nil {
		err = fmt.Errorf("failed deleting cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted cart item")

	return nil
}

func (s CartService) ClearCart(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	if userID == uuid.Nil {
		inErrors.HandleError(inErrors.ErrUnauthenticated, span)
		logger.Error().
			Err(inErrors.ErrUnauthenticated).
			Msg(inErrors.ErrUnauthenticated.Error())
		return inErrors.ErrUnauthenticated
	}

	logger.Info().Msg("clearing cart")
	err := s.carts.DeleteCartItemsByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared cart")

	return nil
}

func newCartItem(item repository.EnrichedCartItem) response.CartItem {
	farm := item.FarmName
	if farm == "" {
		farm = defaultFarmName
	}
	unit := item.ProductUnit
	if unit == "" {
		unit = defaultProductUnit
	}
	return response.CartItem{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Product: response.Product{
			ID:    item.ProductID,
			Name:  item.ProductName,
			Price: item.ProductPrice,
			Image: item.ProductImage,
			Unit:  unit,
			Farm:  farm,
		},
	}
}
