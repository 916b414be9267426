package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CartItem is one row of cart_items: a user's intended quantity of one
// product. At most one row exists per (user, product) pair.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnrichedCartItem joins a cart row with the live product and its farm. The
// price here is the product's current price, re-read on every fetch; nothing
// is frozen until an order is placed.
type EnrichedCartItem struct {
	CartItem
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductImage string          `json:"product_image"`
	ProductUnit  string          `json:"product_unit"`
	FarmName     string          `json:"farm_name"`
}

type InsertCartItemParams struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

const findCartItemsByUserId = `
SELECT ci.id,
       ci.user_id,
       ci.product_id,
       ci.quantity,
       ci.created_at,
       ci.updated_at,
       p.name,
       p.price,
       COALESCE(p.image, ''),
       COALESCE(p.unit, ''),
       COALESCE(f.name, '')
FROM cart_items ci
         JOIN marketplace_products p ON p.id = ci.product_id
         LEFT JOIN farms f ON f.id = p.farm_id
WHERE ci.user_id = $1
ORDER BY ci.created_at DESC
`

func (r *CartRepository) FindCartItemsByUserId(
	c context.Context,
	userID uuid.UUID,
) ([]EnrichedCartItem, error) {
	rows, err := r.pool.Query(c, findCartItemsByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []EnrichedCartItem{}
	for rows.Next() {
		var item EnrichedCartItem
		var price pgtype.Numeric
		err = rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.ProductName,
			&price,
			&item.ProductImage,
			&item.ProductUnit,
			&item.FarmName,
		)
		if err != nil {
			return nil, err
		}
		item.ProductPrice = decimalFromNumeric(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

const findCartItemByUserIdAndProductId = `
SELECT id, user_id, product_id, quantity, created_at, updated_at
FROM cart_items
WHERE user_id = $1
  AND product_id = $2
`

func (r *CartRepository) FindCartItemByUserIdAndProductId(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (CartItem, error) {
	var item CartItem
	err := r.pool.QueryRow(c, findCartItemByUserIdAndProductId, userID, productID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

const insertCartItem = `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
RETURNING id, user_id, product_id, quantity, created_at, updated_at
`

func (r *CartRepository) InsertCartItem(
	c context.Context,
	param InsertCartItemParams,
) (CartItem, error) {
	var item CartItem
	err := r.pool.QueryRow(c, insertCartItem, param.UserID, param.ProductID, param.Quantity).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity   = $2,
    updated_at = now()
WHERE id = $1
`

func (r *CartRepository) UpdateCartItemQuantity(
	c context.Context,
	cartItemID uuid.UUID,
	quantity int32,
) error {
	_, err := r.pool.Exec(c, updateCartItemQuantity, cartItemID, quantity)
	return err
}

const deleteCartItem = `
DELETE
FROM cart_items
WHERE id = $1
`

// DeleteCartItem deletes zero or one row; deleting an absent id is not an
// error.
func (r *CartRepository) DeleteCartItem(c context.Context, cartItemID uuid.UUID) error {
	_, err := r.pool.Exec(c, deleteCartItem, cartItemID)
	return err
}

const deleteCartItemsByUserId = `
DELETE
FROM cart_items
WHERE user_id = $1
`

func (r *CartRepository) DeleteCartItemsByUserId(c context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(c, deleteCartItemsByUserId, userID)
	return err
}
