package request

import (
	"github.com/google/uuid"
)

type UpsertCartItem struct {
	InventoryId     uuid.UUID `validate:"required"                                     json:"inventory_id"`
	Quantity        int32     `validate:"required,gte=1"                               json:"quantity"`
	FulfillmentType string    `validate:"required,oneof=FOR_DELIVERY FOR_COLLECTION"   json:"fulfillment_type"`
}

type UpdateCartItem struct {
	Quantity int32 `validate:"required,gte=1" json:"quantity"`
}
