package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tradeyard/storefront/internal/log"
	"github.com/tradeyard/storefront/internal/pricing"
)

var _ Store = (*CartRepository)(nil)

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func numericToNullDecimal(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromBigInt(n.Int, n.Exp), Valid: true}
}

func scanCart(row pgx.Row) (*Cart, error) {
	cart := Cart{}
	var sessionID pgtype.Text
	var deliveryWithVat, deliveryWithoutVat pgtype.Numeric
	var collectionWithVat, collectionWithoutVat pgtype.Numeric
	var subWithVat, subWithoutVat pgtype.Numeric
	var deliveryCharge, deliveryVat, vat pgtype.Numeric
	var totalWithVat, totalWithoutVat, totalPrice pgtype.Numeric
	err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&sessionID,
		&deliveryWithVat,
		&deliveryWithoutVat,
		&collectionWithVat,
		&collectionWithoutVat,
		&subWithVat,
		&subWithoutVat,
		&deliveryCharge,
		&deliveryVat,
		&vat,
		&totalWithVat,
		&totalWithoutVat,
		&totalPrice,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	cart.SessionID = sessionID.String
	cart.Totals = pricing.Totals{
		DeliveryWithVat:      numericToDecimal(deliveryWithVat),
		DeliveryWithoutVat:   numericToDecimal(deliveryWithoutVat),
		CollectionWithVat:    numericToDecimal(collectionWithVat),
		CollectionWithoutVat: numericToDecimal(collectionWithoutVat),
		SubTotalWithVat:      numericToDecimal(subWithVat),
		SubTotalWithoutVat:   numericToDecimal(subWithoutVat),
		DeliveryCharge:       numericToDecimal(deliveryCharge),
		DeliveryVat:          numericToDecimal(deliveryVat),
		Vat:                  numericToDecimal(vat),
		TotalWithVat:         numericToDecimal(totalWithVat),
		TotalWithoutVat:      numericToDecimal(totalWithoutVat),
	}
	cart.TotalPrice = numericToDecimal(totalPrice)
	return &cart, nil
}

func scanCartItem(rows pgx.Rows) (CartItem, error) {
	item := CartItem{}
	var fulfillment string
	var retail, promotional pgtype.Numeric
	err := rows.Scan(
		&item.ID,
		&item.CartID,
		&item.InventoryID,
		&item.ProductName,
		&item.Quantity,
		&fulfillment,
		&retail,
		&promotional,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return CartItem{}, err
	}
	item.Fulfillment = pricing.Fulfillment(fulfillment)
	item.RetailPrice = numericToNullDecimal(retail)
	item.PromotionalPrice = numericToNullDecimal(promotional)
	return item, nil
}

func zerologRollback(c context.Context, err error) {
	zerolog.Ctx(c).
		Error().
		Err(err).
		Str(log.KEY_TAG, "CartRepository WithTx").
		Str(log.KEY_PROCESS, "rolling back transaction").
		Msg("failed rolling back transaction")
}
