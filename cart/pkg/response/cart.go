package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmstand/farmstand/internal/pricing"
)

// Product is the live product view embedded in a cart line. Its price is the
// product's current price, not a snapshot.
type Product struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
	Unit  string          `json:"unit"`
	Farm  string          `json:"farm"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	Product   Product   `json:"product"`
}

// Cart is the full cart view: enriched lines plus the display totals the
// cart screen renders.
type Cart struct {
	Items       []CartItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Tax         decimal.Decimal `json:"tax"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

func NewCart(items []CartItem) Cart {
	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = pricing.Line{UnitPrice: item.Product.Price, Quantity: item.Quantity}
	}
	subtotal := pricing.Subtotal(lines)
	return Cart{
		Items:       items,
		Subtotal:    subtotal,
		DeliveryFee: pricing.DeliveryFee(),
		Tax:         pricing.Tax(subtotal),
		GrandTotal:  pricing.GrandTotal(lines),
	}
}
