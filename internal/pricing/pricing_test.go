package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func null() decimal.NullDecimal {
	return decimal.NullDecimal{}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func valid(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(v), Valid: true}
}

func ukSettings() Settings {
	return Settings{VatRate: dec("0.20"), DeliveryCharge: dec("5")}
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name        string
		retail      decimal.NullDecimal
		promotional decimal.NullDecimal
		expected    decimal.Decimal
	}{
		{
			name:        "positive promotional price wins over retail",
			retail:      valid("60"),
			promotional: valid("45"),
			expected:    dec("45"),
		},
		{
			name:        "zero promotional price falls back to retail",
			retail:      valid("60"),
			promotional: valid("0"),
			expected:    dec("60"),
		},
		{
			name:        "negative promotional price falls back to retail",
			retail:      valid("60"),
			promotional: valid("-1"),
			expected:    dec("60"),
		},
		{
			name:        "missing promotional price falls back to retail",
			retail:      valid("60"),
			promotional: null(),
			expected:    dec("60"),
		},
		{
			name:        "missing retail and promotional degrades to zero",
			retail:      null(),
			promotional: null(),
			expected:    decimal.Zero,
		},
		{
			name:        "zero retail without promotion is zero",
			retail:      valid("0"),
			promotional: null(),
			expected:    decimal.Zero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := EffectivePrice(tt.retail, tt.promotional)
			assert.True(t, tt.expected.Equal(actual), "expected %s got %s", tt.expected, actual)
		})
	}
}

func TestAvailableQuantity(t *testing.T) {
	assert.EqualValues(t, 3, AvailableQuantity(5, 2))
	assert.EqualValues(t, 0, AvailableQuantity(2, 5))
	assert.True(t, Available(1, 0))
	assert.False(t, Available(4, 4))
}

func TestComputeTotalsWorkedExample(t *testing.T) {
	// One delivery line, quantity 2, effective price 60 inc. VAT.
	lines := []Line{
		{UnitPrice: dec("60"), Quantity: 2, Fulfillment: ForDelivery},
	}

	totals := ComputeTotals(lines, ukSettings())

	assert.True(t, dec("120").Equal(totals.DeliveryWithVat), "deliveryWithVat=%s", totals.DeliveryWithVat)
	assert.True(t, dec("5").Equal(totals.DeliveryCharge))
	assert.True(t, dec("1").Equal(totals.DeliveryVat))
	assert.True(t, dec("100").Equal(totals.SubTotalWithoutVat), "subTotalWithoutVat=%s", totals.SubTotalWithoutVat)
	assert.True(t, dec("21").Equal(totals.Vat), "vat=%s", totals.Vat)
	assert.True(t, dec("126").Equal(totals.TotalWithVat), "totalWithVat=%s", totals.TotalWithVat)
	assert.True(t, dec("105").Equal(totals.TotalWithoutVat), "totalWithoutVat=%s", totals.TotalWithoutVat)
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, ukSettings())

	assert.True(t, totals.SubTotalWithVat.IsZero())
	assert.True(t, totals.SubTotalWithoutVat.IsZero())
	assert.True(t, totals.DeliveryCharge.IsZero())
	assert.True(t, totals.DeliveryVat.IsZero())
	assert.True(t, totals.Vat.IsZero())
	assert.True(t, totals.TotalWithVat.IsZero())
	assert.True(t, totals.TotalWithoutVat.IsZero())
}

func TestComputeTotalsCollectionOnlyHasNoDeliveryCharge(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("12"), Quantity: 1, Fulfillment: ForCollection},
		{UnitPrice: dec("30"), Quantity: 3, Fulfillment: ForCollection},
	}

	totals := ComputeTotals(lines, ukSettings())

	assert.True(t, totals.DeliveryCharge.IsZero())
	assert.True(t, totals.DeliveryVat.IsZero())
	assert.True(t, dec("102").Equal(totals.CollectionWithVat))
	assert.True(t, dec("85").Equal(totals.CollectionWithoutVat), "collectionWithoutVat=%s", totals.CollectionWithoutVat)
	assert.True(t, totals.TotalWithVat.Equal(totals.SubTotalWithVat))
}

func TestComputeTotalsIdempotent(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("19.99"), Quantity: 3, Fulfillment: ForDelivery},
		{UnitPrice: dec("7.49"), Quantity: 1, Fulfillment: ForCollection},
	}

	first := ComputeTotals(lines, ukSettings())
	second := ComputeTotals(lines, ukSettings())

	assert.True(t, first.SubTotalWithVat.Equal(second.SubTotalWithVat))
	assert.True(t, first.SubTotalWithoutVat.Equal(second.SubTotalWithoutVat))
	assert.True(t, first.Vat.Equal(second.Vat))
	assert.True(t, first.TotalWithVat.Equal(second.TotalWithVat))
	assert.True(t, first.TotalWithoutVat.Equal(second.TotalWithoutVat))
}

func TestComputeTotalsVatIdentity(t *testing.T) {
	tolerance := dec("0.000001")
	tests := []struct {
		name  string
		lines []Line
	}{
		{
			name: "mixed fulfillment",
			lines: []Line{
				{UnitPrice: dec("33.33"), Quantity: 2, Fulfillment: ForDelivery},
				{UnitPrice: dec("4.99"), Quantity: 5, Fulfillment: ForCollection},
			},
		},
		{
			name: "delivery only awkward division",
			lines: []Line{
				{UnitPrice: dec("0.07"), Quantity: 13, Fulfillment: ForDelivery},
			},
		},
		{
			name:  "empty",
			lines: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotals(tt.lines, ukSettings())
			// totalWithVat - totalWithoutVat must equal embedded item VAT
			// plus VAT charged on delivery.
			diff := totals.TotalWithVat.Sub(totals.TotalWithoutVat).Sub(totals.Vat).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance), "identity off by %s", diff)
		})
	}
}
