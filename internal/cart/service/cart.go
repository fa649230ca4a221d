package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tradeyard/storefront/internal/cart/otel"
	"github.com/tradeyard/storefront/internal/cart/repository"
	"github.com/tradeyard/storefront/cart/pkg/request"
	"github.com/tradeyard/storefront/cart/pkg/response"
	inErrors "github.com/tradeyard/storefront/internal/errors"
	"github.com/tradeyard/storefront/internal/log"
	commonOtel "github.com/tradeyard/storefront/internal/otel"
	"github.com/tradeyard/storefront/internal/pricing"
	"github.com/tradeyard/storefront/internal/settings"
)

type CartService struct {
	store    repository.Store
	settings settings.Source
}

func NewCartService(store repository.Store, settings settings.Source) CartService {
	return CartService{store: store, settings: settings}
}

// FindCart is a pure read: it serves the persisted totals without touching
// them. Returns nil when the owner has no cart, which the controller maps to
// a success-shaped null response.
func (s CartService) FindCart(
	c context.Context,
	owner repository.Owner,
) (*response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService FindCart").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "finding cart by owner").Logger()
	logger.Info().Msg("finding cart by owner")
	cart, err := s.store.FindCartByOwner(c, owner)
	if err != nil {
		err = fmt.Errorf("failed finding cart by owner with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if cart == nil {
		logger.Info().Msg("owner has no cart")
		return nil, nil
	}
	logger = logger.With().Str(log.KEY_CART_ID, cart.ID.String()).Logger()
	logger.Info().Msg("found cart by owner")

	mapped := response.FromRepository(*cart)
	return &mapped, nil
}

// UpsertItem adds an inventory line to the owner's cart, creating the cart
// lazily on first add. Lines are keyed by (inventoryId, fulfillmentType):
// a collision increments the existing quantity instead of inserting a
// duplicate row. Totals are recomputed inside the same transaction.
func (s CartService) UpsertItem(
	c context.Context,
	owner repository.Owner,
	param request.UpsertCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpsertItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService UpsertItem").
		Str(log.KEY_INVENTORY_ID, param.InventoryId.String()).
		Int32(log.KEY_QUANTITY, param.Quantity).
		Str(log.KEY_FULFILLMENT, param.FulfillmentType).
		Logger()

	current := s.currentSettings(c)
	fulfillment := pricing.Fulfillment(param.FulfillmentType)

	var updated *repository.Cart
	err := s.store.WithTx(c, func(tx repository.Store) error {
		logger = logger.With().Str(log.KEY_PROCESS, "finding inventory").Logger()
		logger.Info().Msg("finding inventory")
		inventory, err := tx.FindInventoryByID(c, param.InventoryId)
		if err != nil {
			return err
		}
		if inventory == nil {
			return fmt.Errorf("failed finding inventoryId=%s with error=%w", param.InventoryId.String(), inErrors.ErrInventoryNotFound)
		}
		if !pricing.Available(inventory.Stock, inventory.HeldStock) {
			return inErrors.ErrOutOfStock
		}
		if fulfillment == pricing.ForDelivery && !inventory.Deliverable {
			return fmt.Errorf("inventoryId=%s is not eligible for delivery", param.InventoryId.String())
		}
		if fulfillment == pricing.ForCollection && !inventory.Collectable {
			return fmt.Errorf("inventoryId=%s is not eligible for collection", param.InventoryId.String())
		}
		logger.Info().Msg("found inventory")

		logger = logger.With().Str(log.KEY_PROCESS, "finding cart").Logger()
		logger.Info().Msg("finding cart")
		cart, err := tx.FindCartByOwner(c, owner)
		if err != nil {
			return err
		}
		if cart == nil {
			logger.Info().Msg("no cart yet, creating one")
			cart, err = tx.CreateCart(c, owner)
			if err != nil {
				return err
			}
		}
		logger = logger.With().Str(log.KEY_CART_ID, cart.ID.String()).Logger()

		logger = logger.With().Str(log.KEY_PROCESS, "upserting cart item").Logger()
		logger.Info().Msg("upserting cart item")
		existing := findItemByKey(cart.Items, param.InventoryId, fulfillment)
		if existing != nil {
			merged := existing.Quantity + param.Quantity
			logger.Info().
				Int32(log.KEY_MERGED_QUANTITY, merged).
				Msg("merging quantity into existing cart item")
			err = tx.UpdateItemQuantity(c, existing.ID, merged)
		} else {
			err = tx.InsertItem(c, repository.InsertItemParams{
				ID:          uuid.New(),
				CartID:      cart.ID,
				InventoryID: param.InventoryId,
				Quantity:    param.Quantity,
				Fulfillment: fulfillment,
			})
		}
		if err != nil {
			return err
		}
		logger.Info().Msg("upserted cart item")

		updated, err = s.recompute(c, tx, cart.ID, current)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed upserting cart item with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	return response.FromRepository(*updated), nil
}

// UpdateItemQuantity replaces the quantity of one line, then recomputes.
func (s CartService) UpdateItemQuantity(
	c context.Context,
	owner repository.Owner,
	itemID uuid.UUID,
	quantity int32,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService UpdateItemQuantity").
		Str(log.KEY_CART_ITEM_ID, itemID.String()).
		Int32(log.KEY_QUANTITY, quantity).
		Logger()

	current := s.currentSettings(c)

	var updated *repository.Cart
	err := s.store.WithTx(c, func(tx repository.Store) error {
		cart, err := tx.FindCartByOwner(c, owner)
		if err != nil {
			return err
		}
		if cart == nil {
			return inErrors.ErrCartNotFound
		}
		if findItemByID(cart.Items, itemID) == nil {
			return inErrors.ErrCartItemMissing
		}
		err = tx.UpdateItemQuantity(c, itemID, quantity)
		if err != nil {
			return err
		}
		updated, err = s.recompute(c, tx, cart.ID, current)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed updating cart item quantity with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("updated cart item quantity")

	return response.FromRepository(*updated), nil
}

// RemoveItem deletes one line, then recomputes.
func (s CartService) RemoveItem(
	c context.Context,
	owner repository.Owner,
	itemID uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService RemoveItem").
		Str(log.KEY_CART_ITEM_ID, itemID.String()).
		Logger()

	current := s.currentSettings(c)

	var updated *repository.Cart
	err := s.store.WithTx(c, func(tx repository.Store) error {
		cart, err := tx.FindCartByOwner(c, owner)
		if err != nil {
			return err
		}
		if cart == nil {
			return inErrors.ErrCartNotFound
		}
		if findItemByID(cart.Items, itemID) == nil {
			return inErrors.ErrCartItemMissing
		}
		err = tx.DeleteItem(c, cart.ID, itemID)
		if err != nil {
			return err
		}
		updated, err = s.recompute(c, tx, cart.ID, current)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("removed cart item")

	return response.FromRepository(*updated), nil
}

// RecomputeCart re-derives and persists totals for one cart on demand. This
// is the explicit mutation endpoint that replaces recompute-on-read.
func (s CartService) RecomputeCart(
	c context.Context,
	owner repository.Owner,
	cartID uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RecomputeCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService RecomputeCart").
		Str(log.KEY_CART_ID, cartID.String()).
		Logger()

	current := s.currentSettings(c)

	var updated *repository.Cart
	err := s.store.WithTx(c, func(tx repository.Store) error {
		cart, err := tx.FindCartByID(c, cartID)
		if err != nil {
			return err
		}
		if cart == nil || !cartOwnedBy(*cart, owner) {
			return inErrors.ErrCartNotFound
		}
		updated, err = s.recompute(c, tx, cart.ID, current)
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed recomputing cartId=%s with error=%w", cartID.String(), err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("recomputed cart totals")

	return response.FromRepository(*updated), nil
}

// recompute loads the cart fresh, derives totals from its current lines and
// persists them, returning the cart with totals attached.
func (s CartService) recompute(
	c context.Context,
	tx repository.Store,
	cartID uuid.UUID,
	current pricing.Settings,
) (*repository.Cart, error) {
	cart, err := tx.FindCartByID(c, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, inErrors.ErrCartNotFound
	}

	totals := pricing.ComputeTotals(cartLines(cart.Items), current)
	err = tx.UpdateTotals(c, cart.ID, totals)
	if err != nil {
		return nil, err
	}
	cart.Totals = totals
	cart.TotalPrice = totals.SubTotalWithVat
	return cart, nil
}

// currentSettings falls back to the seeded defaults when the settings store
// is unreachable so cart mutations keep working during a cache/db blip.
func (s CartService) currentSettings(c context.Context) pricing.Settings {
	current, err := s.settings.Current(c)
	if err != nil {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KEY_TAG, "CartService currentSettings").
			Logger()
		err = fmt.Errorf("failed loading store settings with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.DefaultSettings()
	}
	return current
}

func cartLines(items []repository.CartItem) []pricing.Line {
	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = pricing.Line{
			UnitPrice:   pricing.EffectivePrice(item.RetailPrice, item.PromotionalPrice),
			Quantity:    item.Quantity,
			Fulfillment: item.Fulfillment,
		}
	}
	return lines
}

func findItemByKey(
	items []repository.CartItem,
	inventoryID uuid.UUID,
	fulfillment pricing.Fulfillment,
) *repository.CartItem {
	for i := range items {
		if items[i].InventoryID == inventoryID && items[i].Fulfillment == fulfillment {
			return &items[i]
		}
	}
	return nil
}

// cartOwnedBy reports whether the cart belongs to the owner making the
// request. Carts referenced by id are never served across owners.
func cartOwnedBy(cart repository.Cart, owner repository.Owner) bool {
	if owner.UserID.Valid {
		return cart.UserID.Valid && cart.UserID.UUID == owner.UserID.UUID
	}
	return owner.SessionID != "" && cart.SessionID == owner.SessionID
}

func findItemByID(items []repository.CartItem, id uuid.UUID) *repository.CartItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
