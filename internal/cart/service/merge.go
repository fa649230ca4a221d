package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tradeyard/storefront/internal/cart/otel"
	"github.com/tradeyard/storefront/internal/cart/repository"
	"github.com/tradeyard/storefront/internal/log"
	commonOtel "github.com/tradeyard/storefront/internal/otel"
	"github.com/tradeyard/storefront/internal/pricing"
)

// MergeCartsOnLogin folds an anonymous session cart into the signing-in
// user's cart. It is best-effort: every failure is logged and swallowed so a
// broken merge can never block authentication. Re-running after the session
// cart is gone is a no-op, which makes the whole operation idempotent under
// at-least-once invocation.
//
// The read-merge-delete sequence runs inside a single transaction holding an
// advisory lock on the user, so two simultaneous logins (two browser tabs)
// cannot double-merge.
func (s CartService) MergeCartsOnLogin(c context.Context, userID uuid.UUID, sessionID string) {
	c, span := otel.Tracer.Start(c, "CartService MergeCartsOnLogin")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "CartService MergeCartsOnLogin").
		Str(log.KEY_USER_ID, userID.String()).
		Str(log.KEY_SESSION_ID, sessionID).
		Logger()

	if sessionID == "" {
		logger.Info().Msg("no session id, nothing to merge")
		return
	}

	logger = logger.With().Str(log.KEY_PROCESS, "checking user exists").Logger()
	exists, err := s.store.UserExists(c, userID)
	if err != nil {
		err = fmt.Errorf("failed checking user exists with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	if !exists {
		logger.Error().Msgf("userId=%s not found, skipping merge", userID.String())
		return
	}

	current := s.currentSettings(c)

	err = s.store.WithTx(c, func(tx repository.Store) error {
		err := tx.AcquireOwnerLock(c, userID)
		if err != nil {
			return err
		}

		sessionCart, err := tx.FindCartByOwner(c, repository.SessionOwner(sessionID))
		if err != nil {
			return err
		}
		if sessionCart == nil {
			logger.Info().Msg("no session cart, nothing to merge")
			return nil
		}

		userCart, err := tx.FindCartByOwner(c, repository.UserOwner(userID))
		if err != nil {
			return err
		}

		if userCart == nil {
			// No user cart yet: re-own the session items under a fresh user
			// cart, keeping item identity and timestamps, then drop the
			// empty session shell.
			logger.Info().Msg("no user cart, re-owning session items")
			userCart, err = tx.CreateCart(c, repository.UserOwner(userID))
			if err != nil {
				return err
			}
			err = tx.ReassignItems(c, sessionCart.ID, userCart.ID)
			if err != nil {
				return err
			}
			err = tx.DeleteCart(c, sessionCart.ID)
			if err != nil {
				return err
			}
		} else {
			logger.Info().
				Int(log.KEY_CART_ITEMS, len(sessionCart.Items)).
				Msg("merging session items into user cart")
			for _, item := range sessionCart.Items {
				existing := findItemByKey(userCart.Items, item.InventoryID, item.Fulfillment)
				if existing != nil {
					merged := existing.Quantity + item.Quantity
					logger.Info().
						Str(log.KEY_INVENTORY_ID, item.InventoryID.String()).
						Int32(log.KEY_MERGED_QUANTITY, merged).
						Msg("summing quantities for colliding cart item")
					err = tx.UpdateItemQuantity(c, existing.ID, merged)
				} else {
					err = tx.InsertItem(c, repository.InsertItemParams{
						ID:          uuid.New(),
						CartID:      userCart.ID,
						InventoryID: item.InventoryID,
						Quantity:    item.Quantity,
						Fulfillment: item.Fulfillment,
					})
				}
				if err != nil {
					return err
				}
			}
			// Cascades the session cart's items.
			err = tx.DeleteCart(c, sessionCart.ID)
			if err != nil {
				return err
			}
		}

		merged, err := tx.FindCartByID(c, userCart.ID)
		if err != nil {
			return err
		}
		if merged == nil {
			return fmt.Errorf("merged cartId=%s disappeared", userCart.ID.String())
		}
		totals := pricing.ComputeTotals(cartLines(merged.Items), current)
		return tx.UpdateTotals(c, merged.ID, totals)
	})
	if err != nil {
		err = fmt.Errorf("failed merging carts on login with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	logger.Info().Msg("merged session cart into user cart")
}
