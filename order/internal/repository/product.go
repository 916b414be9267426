package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	InStock bool            `json:"in_stock"`
}

const findProductById = `
SELECT id, name, price, in_stock
FROM marketplace_products
WHERE id = $1
`

func (r *OrderRepository) FindProductById(
	c context.Context,
	productID uuid.UUID,
) (Product, error) {
	var product Product
	var price pgtype.Numeric
	err := r.pool.QueryRow(c, findProductById, productID).Scan(
		&product.ID,
		&product.Name,
		&price,
		&product.InStock,
	)
	if err != nil {
		return Product{}, err
	}
	product.Price = decimalFromNumeric(price)
	return product, nil
}
