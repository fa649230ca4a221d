package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeyard/storefront/internal/cart/repository"
	"github.com/tradeyard/storefront/cart/pkg/request"
	inErrors "github.com/tradeyard/storefront/internal/errors"
	"github.com/tradeyard/storefront/internal/pricing"
)

func TestFindCartReturnsNilWhenOwnerHasNone(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	cart, err := svc.FindCart(context.Background(), repository.SessionOwner("sess-empty"))

	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestFindCartServesPersistedTotalsWithoutRecomputing(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("keyboard", "50"))
	cart := store.addCart(repository.SessionOwner("sess-read"))
	store.addItem(cart, inventoryID, 1, pricing.ForDelivery)
	cart.Totals = pricing.Totals{SubTotalWithVat: dec("999")}
	cart.TotalPrice = dec("999")

	got, err := svc.FindCart(context.Background(), repository.SessionOwner("sess-read"))

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.TotalPrice.Equal(dec("999")), "reads must not re-derive totals")
}

func TestUpsertItemCreatesCartLazily(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("monitor", "100"))

	got, err := svc.UpsertItem(context.Background(), repository.SessionOwner("sess-new"), request.UpsertCartItem{
		InventoryId:     inventoryID,
		Quantity:        1,
		FulfillmentType: "FOR_DELIVERY",
	})

	require.NoError(t, err)
	assert.Len(t, store.carts, 1)
	require.Len(t, got.CartItems, 1)
	assert.Equal(t, int32(1), got.CartItems[0].Quantity)
	assert.True(t, got.SubTotalWithVat.Equal(dec("100")))
	assert.True(t, got.TotalWithVat.Equal(dec("106")), "got %s", got.TotalWithVat)
	assert.True(t, got.TotalPrice.Equal(dec("100")))
}

func TestUpsertItemMergesOnSameInventoryAndFulfillment(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("ssd", "80"))
	owner := repository.SessionOwner("sess-merge")

	param := request.UpsertCartItem{
		InventoryId:     inventoryID,
		Quantity:        2,
		FulfillmentType: "FOR_COLLECTION",
	}
	_, err := svc.UpsertItem(context.Background(), owner, param)
	require.NoError(t, err)
	param.Quantity = 3
	got, err := svc.UpsertItem(context.Background(), owner, param)
	require.NoError(t, err)

	require.Len(t, got.CartItems, 1, "same (inventory, fulfillment) must stay one row")
	assert.Equal(t, int32(5), got.CartItems[0].Quantity)
	assert.True(t, got.DeliveryCharge.IsZero(), "collection-only cart has no delivery charge")
}

func TestUpsertItemUsesPromotionalPriceWhenSet(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(fakeProduct{
		name:        "headphones",
		retail:      decimal.NullDecimal{Decimal: dec("90"), Valid: true},
		promotional: decimal.NullDecimal{Decimal: dec("60"), Valid: true},
	})

	got, err := svc.UpsertItem(context.Background(), repository.SessionOwner("sess-promo"), request.UpsertCartItem{
		InventoryId:     inventoryID,
		Quantity:        1,
		FulfillmentType: "FOR_COLLECTION",
	})

	require.NoError(t, err)
	require.Len(t, got.CartItems, 1)
	assert.True(t, got.CartItems[0].UnitPrice.Equal(dec("60")))
	assert.True(t, got.SubTotalWithVat.Equal(dec("60")))
}

func TestUpsertItemRejectsOutOfStockInventory(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("gpu", "500"))
	inventory := store.inventories[inventoryID]
	inventory.Stock = 3
	inventory.HeldStock = 3
	store.inventories[inventoryID] = inventory

	_, err := svc.UpsertItem(context.Background(), repository.SessionOwner("sess-oos"), request.UpsertCartItem{
		InventoryId:     inventoryID,
		Quantity:        1,
		FulfillmentType: "FOR_DELIVERY",
	})

	assert.ErrorIs(t, err, inErrors.ErrOutOfStock)
	assert.Empty(t, store.carts, "no cart should be created for a rejected add")
}

func TestUpsertItemRejectsUnknownInventory(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	_, err := svc.UpsertItem(context.Background(), repository.SessionOwner("sess-unknown-inv"), request.UpsertCartItem{
		InventoryId:     uuid.New(),
		Quantity:        1,
		FulfillmentType: "FOR_DELIVERY",
	})

	assert.ErrorIs(t, err, inErrors.ErrInventoryNotFound)
	assert.Empty(t, store.carts, "no cart should be created for a rejected add")
}

func TestUpsertItemRejectsIneligibleFulfillment(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("sofa", "400"))
	inventory := store.inventories[inventoryID]
	inventory.Deliverable = false
	store.inventories[inventoryID] = inventory

	_, err := svc.UpsertItem(context.Background(), repository.SessionOwner("sess-bulky"), request.UpsertCartItem{
		InventoryId:     inventoryID,
		Quantity:        1,
		FulfillmentType: "FOR_DELIVERY",
	})

	assert.Error(t, err)
}

func TestUpdateItemQuantityRecomputesTotals(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("chair", "60"))
	owner := repository.SessionOwner("sess-qty")
	cart := store.addCart(owner)
	item := store.addItem(cart, inventoryID, 1, pricing.ForDelivery)

	got, err := svc.UpdateItemQuantity(context.Background(), owner, item.ID, 2)

	require.NoError(t, err)
	require.Len(t, got.CartItems, 1)
	assert.Equal(t, int32(2), got.CartItems[0].Quantity)
	assert.True(t, got.SubTotalWithVat.Equal(dec("120")))
	assert.True(t, got.TotalWithVat.Equal(dec("126")), "got %s", got.TotalWithVat)
}

func TestUpdateItemQuantityRejectsForeignItem(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	owner := repository.SessionOwner("sess-foreign")
	store.addCart(owner)

	_, err := svc.UpdateItemQuantity(context.Background(), owner, uuid.New(), 2)

	assert.ErrorIs(t, err, inErrors.ErrCartItemMissing)
}

func TestRemoveItemRecomputesTotals(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("cable", "12"))
	otherID := store.addInventory(retailOnly("adapter", "24"))
	owner := repository.SessionOwner("sess-remove")
	cart := store.addCart(owner)
	item := store.addItem(cart, inventoryID, 1, pricing.ForDelivery)
	store.addItem(cart, otherID, 1, pricing.ForCollection)

	got, err := svc.RemoveItem(context.Background(), owner, item.ID)

	require.NoError(t, err)
	require.Len(t, got.CartItems, 1)
	assert.True(t, got.DeliveryCharge.IsZero(), "removing the last delivery line drops the charge")
	assert.True(t, got.SubTotalWithVat.Equal(dec("24")))
}

func TestRemoveItemRejectsUnknownItem(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("lamp", "30"))
	owner := repository.SessionOwner("sess-unknown-item")
	cart := store.addCart(owner)
	store.addItem(cart, inventoryID, 1, pricing.ForDelivery)

	_, err := svc.RemoveItem(context.Background(), owner, uuid.New())

	assert.ErrorIs(t, err, inErrors.ErrCartItemMissing,
		"a missing line is not a system fault")
	require.Len(t, store.carts[cart.ID].Items, 1, "existing lines stay untouched")
}

func TestRemoveItemFromMissingCart(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	_, err := svc.RemoveItem(context.Background(), repository.SessionOwner("sess-none"), uuid.New())

	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}

func TestRecomputeCartPersistsDerivedTotals(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("tv", "120"))
	owner := repository.SessionOwner("sess-recompute")
	cart := store.addCart(owner)
	store.addItem(cart, inventoryID, 1, pricing.ForDelivery)

	got, err := svc.RecomputeCart(context.Background(), owner, cart.ID)

	require.NoError(t, err)
	assert.True(t, got.SubTotalWithVat.Equal(dec("120")))
	assert.True(t, got.Vat.Equal(dec("21")), "got %s", got.Vat)
	assert.True(t, got.TotalWithVat.Equal(dec("126")))
	assert.True(t, store.carts[cart.ID].TotalPrice.Equal(dec("120")), "persisted legacy total follows sub total")
}

func TestRecomputeCartUnknownCart(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	_, err := svc.RecomputeCart(context.Background(), repository.SessionOwner("sess-unknown-cart"), uuid.New())

	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}

func TestRecomputeCartRejectsForeignOwner(t *testing.T) {
	store := newFakeStore()
	svc := NewCartService(store, testSettings())

	inventoryID := store.addInventory(retailOnly("tv", "120"))
	cart := store.addCart(repository.SessionOwner("sess-victim"))
	store.addItem(cart, inventoryID, 1, pricing.ForDelivery)

	_, err := svc.RecomputeCart(context.Background(), repository.SessionOwner("sess-intruder"), cart.ID)
	assert.ErrorIs(t, err, inErrors.ErrCartNotFound, "foreign carts look like they do not exist")

	_, err = svc.RecomputeCart(context.Background(), repository.UserOwner(uuid.New()), cart.ID)
	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}
