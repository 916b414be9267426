package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(price string, quantity int32) Line {
	return Line{UnitPrice: decimal.RequireFromString(price), Quantity: quantity}
}

func TestSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		expected string
	}{
		{
			name:     "given no lines should return zero",
			lines:    nil,
			expected: "0",
		},
		{
			name:     "given one line should return price times quantity",
			lines:    []Line{line("3.00", 2)},
			expected: "6.00",
		},
		{
			name:     "given tomatoes and eggs should return 10.50",
			lines:    []Line{line("3.00", 2), line("4.50", 1)},
			expected: "10.50",
		},
		{
			name:     "given prices that drift under float addition should stay exact",
			lines:    []Line{line("0.10", 1), line("0.20", 1), line("0.30", 1)},
			expected: "0.60",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := decimal.RequireFromString(tt.expected)
			assert.True(
				t,
				expected.Equal(Subtotal(tt.lines)),
				"expected subtotal=%s got=%s",
				expected,
				Subtotal(tt.lines),
			)
		})
	}
}

func TestGrandTotal(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		expected string
	}{
		{
			name:     "given empty cart should return delivery fee only",
			lines:    nil,
			expected: "5.00",
		},
		{
			name:     "given tomatoes and eggs should return 16.34",
			lines:    []Line{line("3.00", 2), line("4.50", 1)},
			expected: "16.34",
		},
		{
			name:     "given reversed line order should return the same total",
			lines:    []Line{line("4.50", 1), line("3.00", 2)},
			expected: "16.34",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := decimal.RequireFromString(tt.expected)
			actual := GrandTotal(tt.lines)
			assert.True(t, expected.Equal(actual), "expected grandTotal=%s got=%s", expected, actual)
		})
	}
}

func TestTaxIsEightPercentOfSubtotal(t *testing.T) {
	subtotal := decimal.RequireFromString("10.50")
	assert.True(t, decimal.RequireFromString("0.84").Equal(Tax(subtotal)))
}

func TestDeliveryFeeIsFlat(t *testing.T) {
	assert.True(t, decimal.RequireFromString("5.00").Equal(DeliveryFee()))
}

func TestPolicyOrderTotal(t *testing.T) {
	lines := []Line{line("3.00", 2), line("4.50", 1)}

	subtotalOnly := Policy{IncludeFees: false}
	assert.True(
		t,
		decimal.RequireFromString("10.50").Equal(subtotalOnly.OrderTotal(lines)),
		"subtotal-only policy should persist the bare subtotal",
	)

	withFees := Policy{IncludeFees: true}
	assert.True(
		t,
		decimal.RequireFromString("16.34").Equal(withFees.OrderTotal(lines)),
		"fee-inclusive policy should match the displayed grand total",
	)
}
