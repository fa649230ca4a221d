package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeyard/storefront/internal/pricing"
)

type Cart struct {
	ID             uuid.UUID       `json:"id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
	CartItems      []CartItem      `json:"cart_items"`
	pricing.Totals                 // derived monetary fields, flattened
	TotalPrice     decimal.Decimal `json:"total_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CartItem struct {
	ID              uuid.UUID           `json:"id"`
	CartID          uuid.UUID           `json:"cart_id"`
	InventoryID     uuid.UUID           `json:"inventory_id"`
	ProductName     string              `json:"product_name"`
	Quantity        int32               `json:"quantity"`
	FulfillmentType pricing.Fulfillment `json:"fulfillment_type"`
	UnitPrice       decimal.Decimal     `json:"unit_price"`
	LineTotal       decimal.Decimal     `json:"line_total"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
