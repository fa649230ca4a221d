package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tradeyard/storefront/internal/cart/repository"
	"github.com/tradeyard/storefront/internal/pricing"
)

type fakeProduct struct {
	name        string
	retail      decimal.NullDecimal
	promotional decimal.NullDecimal
}

// fakeStore is an in-memory repository.Store so merge and aggregation logic
// can be exercised without a database. WithTx runs the callback against the
// same state; the service treats it as atomic.
type fakeStore struct {
	users       map[uuid.UUID]bool
	carts       map[uuid.UUID]*repository.Cart
	inventories map[uuid.UUID]repository.Inventory
	products    map[uuid.UUID]fakeProduct

	lockCount int
	txCount   int
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[uuid.UUID]bool{},
		carts:       map[uuid.UUID]*repository.Cart{},
		inventories: map[uuid.UUID]repository.Inventory{},
		products:    map[uuid.UUID]fakeProduct{},
	}
}

func (f *fakeStore) addUser() uuid.UUID {
	id := uuid.New()
	f.users[id] = true
	return id
}

func (f *fakeStore) addInventory(product fakeProduct) uuid.UUID {
	id := uuid.New()
	f.inventories[id] = repository.Inventory{
		ID:          id,
		ProductID:   uuid.New(),
		Stock:       100,
		HeldStock:   0,
		Deliverable: true,
		Collectable: true,
	}
	f.products[id] = product
	return id
}

func (f *fakeStore) addCart(owner repository.Owner) *repository.Cart {
	cart := &repository.Cart{ID: uuid.New(), UserID: owner.UserID, SessionID: owner.SessionID}
	f.carts[cart.ID] = cart
	return cart
}

func (f *fakeStore) addItem(
	cart *repository.Cart,
	inventoryID uuid.UUID,
	quantity int32,
	fulfillment pricing.Fulfillment,
) repository.CartItem {
	product := f.products[inventoryID]
	item := repository.CartItem{
		ID:               uuid.New(),
		CartID:           cart.ID,
		InventoryID:      inventoryID,
		ProductName:      product.name,
		Quantity:         quantity,
		Fulfillment:      fulfillment,
		RetailPrice:      product.retail,
		PromotionalPrice: product.promotional,
	}
	cart.Items = append(cart.Items, item)
	return item
}

func (f *fakeStore) FindCartByOwner(
	_ context.Context,
	owner repository.Owner,
) (*repository.Cart, error) {
	for _, cart := range f.carts {
		if owner.UserID.Valid && cart.UserID == owner.UserID {
			return cart, nil
		}
		if !owner.UserID.Valid && owner.SessionID != "" && cart.SessionID == owner.SessionID {
			return cart, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindCartByID(_ context.Context, id uuid.UUID) (*repository.Cart, error) {
	cart, ok := f.carts[id]
	if !ok {
		return nil, nil
	}
	return cart, nil
}

func (f *fakeStore) CreateCart(
	_ context.Context,
	owner repository.Owner,
) (*repository.Cart, error) {
	return f.addCart(owner), nil
}

func (f *fakeStore) DeleteCart(_ context.Context, id uuid.UUID) error {
	delete(f.carts, id)
	return nil
}

func (f *fakeStore) InsertItem(_ context.Context, param repository.InsertItemParams) error {
	cart := f.carts[param.CartID]
	product := f.products[param.InventoryID]
	cart.Items = append(cart.Items, repository.CartItem{
		ID:               param.ID,
		CartID:           param.CartID,
		InventoryID:      param.InventoryID,
		ProductName:      product.name,
		Quantity:         param.Quantity,
		Fulfillment:      param.Fulfillment,
		RetailPrice:      product.retail,
		PromotionalPrice: product.promotional,
	})
	return nil
}

func (f *fakeStore) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int32) error {
	for _, cart := range f.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items[i].Quantity = quantity
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeStore) DeleteItem(_ context.Context, cartID, itemID uuid.UUID) error {
	cart, ok := f.carts[cartID]
	if !ok {
		return pgx.ErrNoRows
	}
	items := cart.Items[:0]
	deleted := false
	for _, item := range cart.Items {
		if item.ID == itemID {
			deleted = true
			continue
		}
		items = append(items, item)
	}
	cart.Items = items
	if !deleted {
		return pgx.ErrNoRows
	}
	return nil
}

func (f *fakeStore) ReassignItems(_ context.Context, fromCartID, toCartID uuid.UUID) error {
	from, ok := f.carts[fromCartID]
	if !ok {
		return nil
	}
	to := f.carts[toCartID]
	for _, item := range from.Items {
		item.CartID = toCartID
		to.Items = append(to.Items, item)
	}
	from.Items = nil
	return nil
}

func (f *fakeStore) UpdateTotals(
	_ context.Context,
	cartID uuid.UUID,
	totals pricing.Totals,
) error {
	cart := f.carts[cartID]
	cart.Totals = totals
	cart.TotalPrice = totals.SubTotalWithVat
	return nil
}

func (f *fakeStore) FindInventoryByID(
	_ context.Context,
	id uuid.UUID,
) (*repository.Inventory, error) {
	inventory, ok := f.inventories[id]
	if !ok {
		return nil, nil
	}
	return &inventory, nil
}

func (f *fakeStore) UserExists(_ context.Context, userID uuid.UUID) (bool, error) {
	return f.users[userID], nil
}

func (f *fakeStore) AcquireOwnerLock(_ context.Context, _ uuid.UUID) error {
	f.lockCount++
	return nil
}

func (f *fakeStore) WithTx(_ context.Context, fn func(repository.Store) error) error {
	f.txCount++
	return fn(f)
}

type fakeSettings struct {
	current pricing.Settings
}

func (f fakeSettings) Current(context.Context) (pricing.Settings, error) {
	return f.current, nil
}

func testSettings() fakeSettings {
	return fakeSettings{
		current: pricing.Settings{
			VatRate:        decimal.RequireFromString("0.20"),
			DeliveryCharge: decimal.RequireFromString("5"),
		},
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func retailOnly(name, retail string) fakeProduct {
	return fakeProduct{
		name:   name,
		retail: decimal.NullDecimal{Decimal: decimal.RequireFromString(retail), Valid: true},
	}
}
