package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	inErrors "github.com/farmstand/farmstand/internal/errors"
	"github.com/farmstand/farmstand/internal/log"
	"github.com/farmstand/farmstand/internal/pricing"
	"github.com/farmstand/farmstand/order/internal/otel"
	"github.com/farmstand/farmstand/order/internal/repository"
	"github.com/farmstand/farmstand/order/pkg/response"
)

const missingAddressPlaceholder = "Please update your delivery address"

// OrderRepository persists orders. The pgx implementation writes the header
// and all lines in one transaction.
type OrderRepository interface {
	CreateOrder(c context.Context, param repository.InsertOrderParams, items []repository.InsertOrderItemParams) (repository.Order, error)
	FindOrdersByUserId(c context.Context, userID uuid.UUID) ([]repository.Order, error)
	FindOrderById(c context.Context, orderID uuid.UUID) (repository.Order, error)
	FindOrderItemsByOrderId(c context.Context, orderID uuid.UUID) ([]repository.OrderItem, error)
}

// CartReader exposes the cart rows checkout consumes.
type CartReader interface {
	FindCartLinesByUserId(c context.Context, userID uuid.UUID) ([]repository.CartLine, error)
	DeleteCartItemsByUserId(c context.Context, userID uuid.UUID) error
}

type ProductReader interface {
	FindProductById(c context.Context, productID uuid.UUID) (repository.Product, error)
}

type ProfileReader interface {
	FindProfileById(c context.Context, userID uuid.UUID) (repository.Profile, error)
}

type OrderService struct {
	orders   OrderRepository
	carts    CartReader
	products ProductReader
	profiles ProfileReader
	policy   pricing.Policy
}

func NewOrderService(
	orders OrderRepository,
	carts CartReader,
	products ProductReader,
	profiles ProfileReader,
	policy pricing.Policy,
) OrderService {
	return OrderService{
		orders:   orders,
		carts:    carts,
		products: products,
		profiles: profiles,
		policy:   policy,
	}
}

// CreateOrderFromCart freezes the user's cart into an order: every line's
// current price becomes its price_at_purchase and the cart is emptied
// afterwards. The cart clear is best effort; the order stands even if it
// fails.
func (s OrderService) CreateOrderFromCart(
	c context.Context,
	userID uuid.UUID,
	notes string,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrderFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrderFromCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	if userID == uuid.Nil {
		inErrors.HandleError(inErrors.ErrUnauthenticated, span)
		logger.Error().
			Err(inErrors.ErrUnauthenticated).
			Msg(inErrors.ErrUnauthenticated.Error())
		return response.Order{}, inErrors.ErrUnauthenticated
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart lines").Logger()
	logger.Info().Msg("finding cart lines")
	lines, err := s.carts.FindCartLinesByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart lines with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if len(lines) == 0 {
		inErrors.HandleError(inErrors.ErrEmptyCart, span)
		logger.Error().Err(inErrors.ErrEmptyCart).Msg(inErrors.ErrEmptyCart.Error())
		return response.Order{}, inErrors.ErrEmptyCart
	}
	logger.Info().Msgf("found %d cart lines", len(lines))

	priceLines := make([]pricing.Line, len(lines))
	items := make([]repository.InsertOrderItemParams, len(lines))
	for i, line := range lines {
		priceLines[i] = pricing.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity}
		items[i] = repository.InsertOrderItemParams{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.UnitPrice,
		}
	}
	totalAmount := s.policy.OrderTotal(priceLines)
	logger = logger.With().Str(log.KeyTotalAmount, totalAmount.String()).Logger()

	address, phone := s.deliveryDetails(c, userID)

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	order, err := s.orders.CreateOrder(c, repository.InsertOrderParams{
		UserID:          userID,
		TotalAmount:     totalAmount,
		DeliveryAddress: address,
		DeliveryPhone:   phone,
		Notes:           notes,
	}, items)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("created order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	err = s.carts.DeleteCartItemsByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart after checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("cleared cart")
	}

	orderItems, err := s.orders.FindOrderItemsByOrderId(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		orderItems = []repository.OrderItem{}
	}
	return response.NewOrder(order, orderItems), nil
}

// CreateOrderForProduct places a single-product order directly, skipping the
// cart entirely.
func (s OrderService) CreateOrderForProduct(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
	quantity int32,
	notes string,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService CreateOrderForProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService CreateOrderForProduct").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()

	if userID == uuid.Nil {
		inErrors.HandleError(inErrors.ErrUnauthenticated, span)
		logger.Error().
			Err(inErrors.ErrUnauthenticated).
			Msg(inErrors.ErrUnauthenticated.Error())
		return response.Order{}, inErrors.ErrUnauthenticated
	}
	if quantity < 1 {
		quantity = 1
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.products.FindProductById(c, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("found product name=%s", product.Name)

	priceLines := []pricing.Line{{UnitPrice: product.Price, Quantity: quantity}}
	totalAmount := s.policy.OrderTotal(priceLines)
	logger = logger.With().Str(log.KeyTotalAmount, totalAmount.String()).Logger()

	address, phone := s.deliveryDetails(c, userID)

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	order, err := s.orders.CreateOrder(c, repository.InsertOrderParams{
		UserID:          userID,
		TotalAmount:     totalAmount,
		DeliveryAddress: address,
		DeliveryPhone:   phone,
		Notes:           notes,
	}, []repository.InsertOrderItemParams{{
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtPurchase: product.Price,
	}})
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("created order")

	orderItems, err := s.orders.FindOrderItemsByOrderId(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		orderItems = []repository.OrderItem{}
	}
	return response.NewOrder(order, orderItems), nil
}

// FindOrders lists the user's orders newest first. Store errors degrade to an
// empty list so the order history screen stays usable.
func (s OrderService) FindOrders(c context.Context, userID uuid.UUID) []response.Order {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProcess, "finding orders").
		Logger()

	if userID == uuid.Nil {
		logger.Info().Msg("no authenticated user, returning empty orders")
		return []response.Order{}
	}

	logger.Info().Msg("finding orders")
	orders, err := s.orders.FindOrdersByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return []response.Order{}
	}
	logger.Info().Msgf("found %d orders", len(orders))

	responses := make([]response.Order, len(orders))
	for i, order := range orders {
		responses[i] = response.NewOrder(order, nil)
	}
	return responses
}

func (s OrderService) FindOrderById(
	c context.Context,
	orderID uuid.UUID,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyOrderID, orderID.String()).
		Str(log.KeyProcess, "finding order").
		Logger()

	logger.Info().Msg("finding order")
	order, err := s.orders.FindOrderById(c, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrOrderNotFound
		}
		err = fmt.Errorf("failed finding order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order")

	logger = logger.With().Str(log.KeyProcess, "finding order items").Logger()
	logger.Info().Msg("finding order items")
	items, err := s.orders.FindOrderItemsByOrderId(c, orderID)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("found %d order items", len(items))

	return response.NewOrder(order, items), nil
}

// deliveryDetails resolves the delivery address and phone from the user's
// profile. A missing or blank profile never blocks checkout; a placeholder
// address is used instead.
func (s OrderService) deliveryDetails(c context.Context, userID uuid.UUID) (string, string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService deliveryDetails").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProcess, "finding profile").
		Logger()

	profile, err := s.profiles.FindProfileById(c, userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding profile with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
		return missingAddressPlaceholder, ""
	}
	if profile.FullName == "" {
		return missingAddressPlaceholder, profile.Phone
	}
	return fmt.Sprintf("%s's address", profile.FullName), profile.Phone
}
