package response

import (
	"github.com/shopspring/decimal"

	"github.com/tradeyard/storefront/internal/cart/repository"
	"github.com/tradeyard/storefront/internal/pricing"
)

func FromRepository(cart repository.Cart) Cart {
	items := make([]CartItem, len(cart.Items))
	for i, item := range cart.Items {
		unit := pricing.EffectivePrice(item.RetailPrice, item.PromotionalPrice)
		items[i] = CartItem{
			ID:              item.ID,
			CartID:          item.CartID,
			InventoryID:     item.InventoryID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			FulfillmentType: item.Fulfillment,
			UnitPrice:       unit,
			LineTotal:       unit.Mul(decimal.NewFromInt32(item.Quantity)),
			CreatedAt:       item.CreatedAt,
			UpdatedAt:       item.UpdatedAt,
		}
	}
	mapped := Cart{
		ID:         cart.ID,
		SessionID:  cart.SessionID,
		CartItems:  items,
		Totals:     cart.Totals,
		TotalPrice: cart.TotalPrice,
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}
	if cart.UserID.Valid {
		userID := cart.UserID.UUID
		mapped.UserID = &userID
	}
	return mapped
}
