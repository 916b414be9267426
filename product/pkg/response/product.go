package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmstand/farmstand/product/internal/repository"
)

type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Unit          string           `json:"unit"`
	Image         string           `json:"image"`
	Rating        decimal.Decimal  `json:"rating"`
	InStock       bool             `json:"in_stock"`
	Farm          string           `json:"farm"`
	Category      string           `json:"category"`
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

// Catalog is the storefront home payload: all three sections in one fetch.
type Catalog struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	Farms      []Farm     `json:"farms"`
}

func NewProduct(product repository.Product) Product {
	return Product{
		ID:            product.ID,
		Name:          product.Name,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
		Unit:          product.Unit,
		Image:         product.Image,
		Rating:        product.Rating,
		InStock:       product.InStock,
		Farm:          product.FarmName,
		Category:      product.CategoryName,
	}
}

func NewProducts(products []repository.Product) []Product {
	responses := make([]Product, len(products))
	for i, product := range products {
		responses[i] = NewProduct(product)
	}
	return responses
}

func NewCategories(categories []repository.Category) []Category {
	responses := make([]Category, len(categories))
	for i, category := range categories {
		responses[i] = Category{
			ID:    category.ID,
			Name:  category.Name,
			Icon:  category.Icon,
			Emoji: category.Emoji,
		}
	}
	return responses
}

func NewFarms(farms []repository.Farm) []Farm {
	responses := make([]Farm, len(farms))
	for i, farm := range farms {
		responses[i] = Farm{
			ID:       farm.ID,
			Name:     farm.Name,
			Location: farm.Location,
			Address:  farm.Address,
			Rating:   farm.Rating,
			Hours:    farm.Hours,
			Image:    farm.Image,
		}
	}
	return responses
}
