package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Product is one row of marketplace_products joined with its farm and
// category names. OriginalPrice is nil when the product is not discounted.
type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Unit          string           `json:"unit"`
	Image         string           `json:"image"`
	Rating        decimal.Decimal  `json:"rating"`
	InStock       bool             `json:"in_stock"`
	FarmName      string           `json:"farm_name"`
	CategoryName  string           `json:"category_name"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type Category struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Icon  string    `json:"icon"`
	Emoji string    `json:"emoji"`
}

type Farm struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Location string          `json:"location"`
	Address  string          `json:"address"`
	Rating   decimal.Decimal `json:"rating"`
	Hours    string          `json:"hours"`
	Image    string          `json:"image"`
}

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `
SELECT p.id,
       p.name,
       p.price,
       p.original_price,
       p.unit,
       p.image,
       p.rating,
       p.in_stock,
       COALESCE(f.name, ''),
       COALESCE(pc.name, ''),
       p.created_at,
       p.updated_at
FROM marketplace_products p
         LEFT JOIN farms f ON f.id = p.farm_id
         LEFT JOIN product_categories pc ON pc.id = p.category_id
`

const findProducts = productColumns + `
WHERE p.in_stock = TRUE
ORDER BY p.created_at DESC
`

func (r *ProductRepository) FindProducts(c context.Context) ([]Product, error) {
	rows, err := r.pool.Query(c, findProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const findProductsByCategoryId = productColumns + `
WHERE p.in_stock = TRUE
  AND p.category_id = $1
ORDER BY p.created_at DESC
`

func (r *ProductRepository) FindProductsByCategoryId(
	c context.Context,
	categoryID uuid.UUID,
) ([]Product, error) {
	rows, err := r.pool.Query(c, findProductsByCategoryId, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const findProductById = productColumns + `
WHERE p.id = $1
`

func (r *ProductRepository) FindProductById(
	c context.Context,
	productID uuid.UUID,
) (Product, error) {
	rows, err := r.pool.Query(c, findProductById, productID)
	if err != nil {
		return Product{}, err
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return Product{}, err
	}
	if len(products) == 0 {
		return Product{}, pgx.ErrNoRows
	}
	return products[0], nil
}

const findCategories = `
SELECT id, name, icon, emoji
FROM product_categories
ORDER BY name
`

func (r *ProductRepository) FindCategories(c context.Context) ([]Category, error) {
	rows, err := r.pool.Query(c, findCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		var category Category
		err = rows.Scan(&category.ID, &category.Name, &category.Icon, &category.Emoji)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

const findFarms = `
SELECT id, name, location, address, rating, hours, image
FROM farms
ORDER BY name
`

func (r *ProductRepository) FindFarms(c context.Context) ([]Farm, error) {
	rows, err := r.pool.Query(c, findFarms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	farms := []Farm{}
	for rows.Next() {
		var farm Farm
		var rating pgtype.Numeric
		err = rows.Scan(
			&farm.ID,
			&farm.Name,
			&farm.Location,
			&farm.Address,
			&rating,
			&farm.Hours,
			&farm.Image,
		)
		if err != nil {
			return nil, err
		}
		farm.Rating = decimalFromNumeric(rating)
		farms = append(farms, farm)
	}
	return farms, rows.Err()
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	products := []Product{}
	for rows.Next() {
		var product Product
		var price, originalPrice, rating pgtype.Numeric
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&price,
			&originalPrice,
			&product.Unit,
			&product.Image,
			&rating,
			&product.InStock,
			&product.FarmName,
			&product.CategoryName,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		product.Price = decimalFromNumeric(price)
		product.Rating = decimalFromNumeric(rating)
		if originalPrice.Valid && originalPrice.Int != nil {
			original := decimalFromNumeric(originalPrice)
			product.OriginalPrice = &original
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
