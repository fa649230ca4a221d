package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeyard/storefront/internal/pricing"
	"github.com/tradeyard/storefront/internal/inventory/repository"
)

type Inventory struct {
	ID                uuid.UUID        `json:"id"`
	ProductID         uuid.UUID        `json:"product_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Model             string           `json:"model"`
	BrandName         string           `json:"brand_name"`
	Price             decimal.Decimal  `json:"price"`
	RetailPrice       decimal.Decimal  `json:"retail_price"`
	PromotionalPrice  *decimal.Decimal `json:"promotional_price,omitempty"`
	SoldCount         int32            `json:"sold_count"`
	AvailableQuantity int32            `json:"available_quantity"`
	Deliverable       bool             `json:"deliverable"`
	Collectable       bool             `json:"collectable"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type Pagination struct {
	Page       int32 `json:"page"`
	Limit      int32 `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type InventoryList struct {
	Inventories []Inventory `json:"inventories"`
	Pagination  Pagination  `json:"pagination"`
}

func FromRepository(
	items []repository.InventoryItem,
	page, limit int32,
	totalCount int64,
) InventoryList {
	inventories := make([]Inventory, len(items))
	for i, item := range items {
		inventories[i] = fromItem(item)
	}
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (totalCount + int64(limit) - 1) / int64(limit)
	}
	return InventoryList{
		Inventories: inventories,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			TotalCount: totalCount,
			TotalPages: totalPages,
			HasMore:    int64(page) < totalPages,
		},
	}
}

func fromItem(item repository.InventoryItem) Inventory {
	inventory := Inventory{
		ID:                item.ID,
		ProductID:         item.ProductID,
		Name:              item.Name,
		Description:       item.Description,
		Model:             item.Model,
		BrandName:         item.BrandName,
		Price:             pricing.EffectivePrice(item.RetailPrice, item.PromotionalPrice),
		SoldCount:         item.SoldCount,
		AvailableQuantity: pricing.AvailableQuantity(item.Stock, item.HeldStock),
		Deliverable:       item.Deliverable,
		Collectable:       item.Collectable,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
	if item.RetailPrice.Valid {
		inventory.RetailPrice = item.RetailPrice.Decimal
	}
	if item.PromotionalPrice.Valid {
		promotional := item.PromotionalPrice.Decimal
		inventory.PromotionalPrice = &promotional
	}
	return inventory
}
