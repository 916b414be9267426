// Package pricing holds the storefront's money arithmetic. All values are
// decimal so repeated additions never drift the way binary floats do; totals
// are rounded to cents only at the edges.
package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	deliveryFee = decimal.New(500, -2) // flat 5.00 per order
	taxRate     = decimal.New(8, -2)   // flat 8%
)

// Line is one priced cart or order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int32
}

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.UnitPrice.Mul(decimal.NewFromInt32(line.Quantity)))
	}
	return sum
}

func DeliveryFee() decimal.Decimal {
	return deliveryFee
}

func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(2)
}

func GrandTotal(lines []Line) decimal.Decimal {
	subtotal := Subtotal(lines)
	return subtotal.Add(DeliveryFee()).Add(Tax(subtotal))
}

// Policy decides which formula a persisted order total uses. The storefront
// historically persisted the bare subtotal while the cart screen displayed
// subtotal plus delivery fee and tax; IncludeFees folds fee and tax into the
// persisted total instead of leaving the two formulas divergent.
type Policy struct {
	IncludeFees bool
}

func (p Policy) OrderTotal(lines []Line) decimal.Decimal {
	if p.IncludeFees {
		return GrandTotal(lines)
	}
	return Subtotal(lines)
}
