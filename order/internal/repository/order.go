package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/farmstand/farmstand/internal/log"
)

// Order is one row of marketplace_orders: the header of a placed order with
// its frozen total and delivery details.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryAddress string          `json:"delivery_address"`
	DeliveryPhone   string          `json:"delivery_phone"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is one row of order_items. PriceAtPurchase is the unit price
// frozen at checkout; later catalog price changes never touch it.
type OrderItem struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int32           `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	CreatedAt       time.Time       `json:"created_at"`
}

type InsertOrderParams struct {
	UserID          uuid.UUID
	TotalAmount     decimal.Decimal
	DeliveryAddress string
	DeliveryPhone   string
	Notes           string
}

type InsertOrderItemParams struct {
	ProductID       uuid.UUID
	Quantity        int32
	PriceAtPurchase decimal.Decimal
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const insertOrder = `
INSERT INTO marketplace_orders (user_id, total_amount, delivery_address, delivery_phone, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, user_id, status, total_amount, delivery_address, delivery_phone, notes, created_at, updated_at
`

const insertOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
VALUES ($1, $2, $3, $4)
`

// CreateOrder inserts the order header and all its lines in one transaction.
// Either the whole order lands or none of it does; a half-written order is
// never visible.
func (r *OrderRepository) CreateOrder(
	c context.Context,
	param InsertOrderParams,
	items []InsertOrderItemParams,
) (Order, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderRepository CreateOrder").
		Str(log.KeyUserID, param.UserID.String()).
		Logger()

	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	var order Order
	var totalAmount pgtype.Numeric
	err = tx.QueryRow(
		c,
		insertOrder,
		param.UserID,
		numericFromDecimal(param.TotalAmount),
		param.DeliveryAddress,
		param.DeliveryPhone,
		param.Notes,
	).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&totalAmount,
		&order.DeliveryAddress,
		&order.DeliveryPhone,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}
	order.TotalAmount = decimalFromNumeric(totalAmount)

	for _, item := range items {
		_, err = tx.Exec(
			c,
			insertOrderItem,
			order.ID,
			item.ProductID,
			item.Quantity,
			numericFromDecimal(item.PriceAtPurchase),
		)
		if err != nil {
			return Order{}, fmt.Errorf("failed inserting order item with error=%w", err)
		}
	}

	err = tx.Commit(c)
	if err != nil {
		return Order{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return order, nil
}

const findOrdersByUserId = `
SELECT id, user_id, status, total_amount, delivery_address, delivery_phone, notes, created_at, updated_at
FROM marketplace_orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *OrderRepository) FindOrdersByUserId(
	c context.Context,
	userID uuid.UUID,
) ([]Order, error) {
	rows, err := r.pool.Query(c, findOrdersByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

const findOrderById = `
SELECT id, user_id, status, total_amount, delivery_address, delivery_phone, notes, created_at, updated_at
FROM marketplace_orders
WHERE id = $1
`

func (r *OrderRepository) FindOrderById(c context.Context, orderID uuid.UUID) (Order, error) {
	row := r.pool.QueryRow(c, findOrderById, orderID)
	return scanOrder(row)
}

const findOrderItemsByOrderId = `
SELECT id, order_id, product_id, quantity, price_at_purchase, created_at
FROM order_items
WHERE order_id = $1
ORDER BY created_at
`

func (r *OrderRepository) FindOrderItemsByOrderId(
	c context.Context,
	orderID uuid.UUID,
) ([]OrderItem, error) {
	rows, err := r.pool.Query(c, findOrderItemsByOrderId, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		var price pgtype.Numeric
		err = rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.PriceAtPurchase = decimalFromNumeric(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var order Order
	var totalAmount pgtype.Numeric
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&totalAmount,
		&order.DeliveryAddress,
		&order.DeliveryPhone,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	order.TotalAmount = decimalFromNumeric(totalAmount)
	return order, nil
}
