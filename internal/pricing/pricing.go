// Package pricing is the single source of truth for money rules: effective
// unit price, stock availability and cart total aggregation. Every consumer
// (cart service, inventory listing, responses) must go through this package
// rather than re-deriving the formulas.
package pricing

import (
	"github.com/shopspring/decimal"
)

type Fulfillment string

const (
	ForDelivery   Fulfillment = "FOR_DELIVERY"
	ForCollection Fulfillment = "FOR_COLLECTION"
)

func (f Fulfillment) Valid() bool {
	return f == ForDelivery || f == ForCollection
}

// EffectivePrice picks the unit price a customer pays: the promotional price
// when it is set and strictly positive, otherwise the retail price, otherwise
// zero. Missing data degrades to a zero price, never an error.
func EffectivePrice(retail, promotional decimal.NullDecimal) decimal.Decimal {
	if promotional.Valid && promotional.Decimal.IsPositive() {
		return promotional.Decimal
	}
	if retail.Valid {
		return retail.Decimal
	}
	return decimal.Zero
}

// Available reports whether an inventory row has sellable stock left once
// held units are subtracted.
func Available(stock, held int32) bool {
	return AvailableQuantity(stock, held) > 0
}

func AvailableQuantity(stock, held int32) int32 {
	if remaining := stock - held; remaining > 0 {
		return remaining
	}
	return 0
}

// Settings carries the store-configured tax and delivery values the
// aggregation depends on. They come from the store_settings row, not from
// compile-time constants.
type Settings struct {
	VatRate        decimal.Decimal `json:"vat_rate"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
}

// DefaultSettings mirrors the row the initial migration seeds: standard UK
// VAT and a flat delivery charge.
func DefaultSettings() Settings {
	return Settings{
		VatRate:        decimal.New(20, -2),
		DeliveryCharge: decimal.New(5, 0),
	}
}

// Line is one cart row resolved to its effective VAT-inclusive unit price.
type Line struct {
	UnitPrice   decimal.Decimal
	Quantity    int32
	Fulfillment Fulfillment
}

// Totals holds every derived monetary field persisted on a cart. All
// inclusive amounts embed VAT at Settings.VatRate; exclusive amounts are
// back-calculated as inclusive / (1 + rate).
type Totals struct {
	DeliveryWithVat      decimal.Decimal `json:"delivery_with_vat"`
	DeliveryWithoutVat   decimal.Decimal `json:"delivery_without_vat"`
	CollectionWithVat    decimal.Decimal `json:"collection_with_vat"`
	CollectionWithoutVat decimal.Decimal `json:"collection_without_vat"`
	SubTotalWithVat      decimal.Decimal `json:"sub_total_with_vat"`
	SubTotalWithoutVat   decimal.Decimal `json:"sub_total_without_vat"`
	DeliveryCharge       decimal.Decimal `json:"delivery_charge"`
	DeliveryVat          decimal.Decimal `json:"delivery_vat"`
	Vat                  decimal.Decimal `json:"vat"`
	TotalWithVat         decimal.Decimal `json:"total_with_vat"`
	TotalWithoutVat      decimal.Decimal `json:"total_without_vat"`
}

// ComputeTotals aggregates cart lines into the full set of derived totals.
// It is a pure function of its inputs: running it twice over the same lines
// yields identical totals. An empty line slice yields all-zero totals with
// no delivery charge.
func ComputeTotals(lines []Line, s Settings) Totals {
	deliveryWithVat := decimal.Zero
	collectionWithVat := decimal.Zero
	hasDeliveryItems := false
	for _, line := range lines {
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt32(line.Quantity))
		if line.Fulfillment == ForDelivery {
			deliveryWithVat = deliveryWithVat.Add(lineTotal)
			hasDeliveryItems = true
			continue
		}
		collectionWithVat = collectionWithVat.Add(lineTotal)
	}

	deliveryCharge := decimal.Zero
	deliveryVat := decimal.Zero
	if hasDeliveryItems {
		deliveryCharge = s.DeliveryCharge
		deliveryVat = deliveryCharge.Mul(s.VatRate)
	}

	onePlusRate := decimal.New(1, 0).Add(s.VatRate)
	deliveryWithoutVat := deliveryWithVat.Div(onePlusRate)
	collectionWithoutVat := collectionWithVat.Div(onePlusRate)

	subTotalWithVat := deliveryWithVat.Add(collectionWithVat)
	subTotalWithoutVat := deliveryWithoutVat.Add(collectionWithoutVat)
	vat := subTotalWithVat.Sub(subTotalWithoutVat).Add(deliveryVat)

	return Totals{
		DeliveryWithVat:      deliveryWithVat,
		DeliveryWithoutVat:   deliveryWithoutVat,
		CollectionWithVat:    collectionWithVat,
		CollectionWithoutVat: collectionWithoutVat,
		SubTotalWithVat:      subTotalWithVat,
		SubTotalWithoutVat:   subTotalWithoutVat,
		DeliveryCharge:       deliveryCharge,
		DeliveryVat:          deliveryVat,
		Vat:                  vat,
		TotalWithVat:         subTotalWithVat.Add(deliveryCharge).Add(deliveryVat),
		TotalWithoutVat:      subTotalWithoutVat.Add(deliveryCharge),
	}
}
