package request

import (
	"github.com/google/uuid"
)

type AddCartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity"   validate:"omitempty,gte=1"`
}

type UpdateCartItem struct {
	Quantity int32 `json:"quantity"`
}
