package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CartLine is a cart row joined with the live product price, the view
// checkout freezes into order_items.
type CartLine struct {
	CartItemID  uuid.UUID       `json:"cart_item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int32           `json:"quantity"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

const findCartLinesByUserId = `
SELECT ci.id,
       ci.product_id,
       ci.quantity,
       p.name,
       p.price
FROM cart_items ci
         JOIN marketplace_products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.created_at
`

func (r *OrderRepository) FindCartLinesByUserId(
	c context.Context,
	userID uuid.UUID,
) ([]CartLine, error) {
	rows, err := r.pool.Query(c, findCartLinesByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []CartLine{}
	for rows.Next() {
		var line CartLine
		var price pgtype.Numeric
		err = rows.Scan(
			&line.CartItemID,
			&line.ProductID,
			&line.Quantity,
			&line.ProductName,
			&price,
		)
		if err != nil {
			return nil, err
		}
		line.UnitPrice = decimalFromNumeric(price)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

const deleteCartItemsByUserId = `
DELETE
FROM cart_items
WHERE user_id = $1
`

func (r *OrderRepository) DeleteCartItemsByUserId(c context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(c, deleteCartItemsByUserId, userID)
	return err
}
