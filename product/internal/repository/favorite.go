package repository

import (
	"context"

	"github.com/google/uuid"
)

const insertFavorite = `
INSERT INTO product_favorites (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`

// InsertFavorite is idempotent; favoriting an already favorited product is a
// no-op.
func (r *ProductRepository) InsertFavorite(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) error {
	_, err := r.pool.Exec(c, insertFavorite, userID, productID)
	return err
}

const deleteFavorite = `
DELETE
FROM product_favorites
WHERE user_id = $1
  AND product_id = $2
`

func (r *ProductRepository) DeleteFavorite(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) error {
	_, err := r.pool.Exec(c, deleteFavorite, userID, productID)
	return err
}

const findFavoriteProductIdsByUserId = `
SELECT product_id
FROM product_favorites
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *ProductRepository) FindFavoriteProductIdsByUserId(
	c context.Context,
	userID uuid.UUID,
) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(c, findFavoriteProductIdsByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const findFavoriteProductsByUserId = productColumns + `
         JOIN product_favorites pf ON pf.product_id = p.id
WHERE pf.user_id = $1
ORDER BY pf.created_at DESC
`

func (r *ProductRepository) FindFavoriteProductsByUserId(
	c context.Context,
	userID uuid.UUID,
) ([]Product, error) {
	rows, err := r.pool.Query(c, findFavoriteProductsByUserId, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}
