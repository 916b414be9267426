package request

import (
	"github.com/google/uuid"
)

type Checkout struct {
	Notes string `json:"notes"`
}

type BuyNow struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity"   validate:"omitempty,gte=1"`
	Notes     string    `json:"notes"`
}
