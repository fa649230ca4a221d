package repository

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tradeyard/storefront/internal/pricing"
)

// Owner identifies who a cart belongs to: exactly one of an authenticated
// user or an anonymous browser session.
type Owner struct {
	UserID    uuid.NullUUID
	SessionID string
}

func UserOwner(id uuid.UUID) Owner {
	return Owner{UserID: uuid.NullUUID{UUID: id, Valid: true}}
}

func SessionOwner(id string) Owner {
	return Owner{SessionID: id}
}

type Cart struct {
	ID         uuid.UUID
	UserID     uuid.NullUUID
	SessionID  string
	Totals     pricing.Totals
	TotalPrice decimal.Decimal
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem carries the joined product prices so callers can resolve the
// effective unit price without another round trip.
type CartItem struct {
	ID               uuid.UUID
	CartID           uuid.UUID
	InventoryID      uuid.UUID
	ProductName      string
	Quantity         int32
	Fulfillment      pricing.Fulfillment
	RetailPrice      decimal.NullDecimal
	PromotionalPrice decimal.NullDecimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Inventory struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	Stock       int32
	HeldStock   int32
	Deliverable bool
	Collectable bool
}

type InsertItemParams struct {
	ID          uuid.UUID
	CartID      uuid.UUID
	InventoryID uuid.UUID
	Quantity    int32
	Fulfillment pricing.Fulfillment
}

// Store is the cart data-access contract. The pgx implementation below is the
// production one; services accept the interface so merge and aggregation
// logic stay unit-testable.
type Store interface {
	FindCartByOwner(c context.Context, owner Owner) (*Cart, error)
	FindCartByID(c context.Context, id uuid.UUID) (*Cart, error)
	CreateCart(c context.Context, owner Owner) (*Cart, error)
	DeleteCart(c context.Context, id uuid.UUID) error
	InsertItem(c context.Context, param InsertItemParams) error
	UpdateItemQuantity(c context.Context, itemID uuid.UUID, quantity int32) error
	DeleteItem(c context.Context, cartID, itemID uuid.UUID) error
	ReassignItems(c context.Context, fromCartID, toCartID uuid.UUID) error
	UpdateTotals(c context.Context, cartID uuid.UUID, totals pricing.Totals) error
	FindInventoryByID(c context.Context, id uuid.UUID) (*Inventory, error)
	UserExists(c context.Context, userID uuid.UUID) (bool, error)
	// AcquireOwnerLock takes a transaction-scoped advisory lock keyed on the
	// user so concurrent logins cannot double-merge. Only meaningful inside
	// WithTx.
	AcquireOwnerLock(c context.Context, userID uuid.UUID) error
	WithTx(c context.Context, fn func(Store) error) error
}

type db interface {
	Query(c context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(c context.Context, sql string, args ...any) pgx.Row
	Exec(c context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type CartRepository struct {
	db   db
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: pool, pool: pool}
}

const cartColumns = `id, user_id, session_id,
	delivery_total_with_vat, delivery_total_without_vat,
	collection_total_with_vat, collection_total_without_vat,
	sub_total_with_vat, sub_total_without_vat,
	delivery_charge, delivery_vat, vat,
	total_price_with_vat, total_price_without_vat, total_price,
	created_at, updated_at`

func (r *CartRepository) FindCartByOwner(c context.Context, owner Owner) (*Cart, error) {
	var row pgx.Row
	if owner.UserID.Valid {
		row = r.db.QueryRow(
			c,
			`SELECT `+cartColumns+` FROM carts WHERE user_id = $1`,
			owner.UserID.UUID,
		)
	} else {
		row = r.db.QueryRow(
			c,
			`SELECT `+cartColumns+` FROM carts WHERE session_id = $1`,
			owner.SessionID,
		)
	}
	return r.scanCartWithItems(c, row)
}

func (r *CartRepository) FindCartByID(c context.Context, id uuid.UUID) (*Cart, error) {
	row := r.db.QueryRow(c, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
	return r.scanCartWithItems(c, row)
}

func (r *CartRepository) scanCartWithItems(c context.Context, row pgx.Row) (*Cart, error) {
	cart, err := scanCart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed scanning cart with error=%w", err)
	}

	rows, err := r.db.Query(
		c,
		`SELECT ci.id, ci.cart_id, ci.inventory_id, p.name, ci.quantity,
		        ci.fulfillment_type, p.retail_price, p.promotional_price,
		        ci.created_at, ci.updated_at
		   FROM cart_items ci
		   JOIN inventories i ON i.id = ci.inventory_id
		   JOIN products p ON p.id = i.product_id
		  WHERE ci.cart_id = $1
		  ORDER BY ci.created_at`,
		cart.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed querying cart items with error=%w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning cart item with error=%w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating cart items with error=%w", err)
	}
	return cart, nil
}

func (r *CartRepository) CreateCart(c context.Context, owner Owner) (*Cart, error) {
	var userID any
	var sessionID any
	if owner.UserID.Valid {
		userID = owner.UserID.UUID
	}
	if owner.SessionID != "" {
		sessionID = owner.SessionID
	}
	row := r.db.QueryRow(
		c,
		`INSERT INTO carts (id, user_id, session_id) VALUES ($1, $2, $3)
		 RETURNING `+cartColumns,
		uuid.New(), userID, sessionID,
	)
	cart, err := scanCart(row)
	if err != nil {
		return nil, fmt.Errorf("failed inserting cart with error=%w", err)
	}
	return cart, nil
}

func (r *CartRepository) DeleteCart(c context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(c, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed deleting cartId=%s with error=%w", id.String(), err)
	}
	return nil
}

func (r *CartRepository) InsertItem(c context.Context, param InsertItemParams) error {
	_, err := r.db.Exec(
		c,
		`INSERT INTO cart_items (id, cart_id, inventory_id, quantity, fulfillment_type)
		 VALUES ($1, $2, $3, $4, $5)`,
		param.ID, param.CartID, param.InventoryID, param.Quantity, string(param.Fulfillment),
	)
	if err != nil {
		return fmt.Errorf("failed inserting cart item with error=%w", err)
	}
	return nil
}

func (r *CartRepository) UpdateItemQuantity(
	c context.Context,
	itemID uuid.UUID,
	quantity int32,
) error {
	tag, err := r.db.Exec(
		c,
		`UPDATE cart_items SET quantity = $2, updated_at = now() WHERE id = $1`,
		itemID, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed updating cart item quantity with error=%w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CartRepository) DeleteItem(c context.Context, cartID, itemID uuid.UUID) error {
	tag, err := r.db.Exec(
		c,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`,
		itemID, cartID,
	)
	if err != nil {
		return fmt.Errorf("failed deleting cart item with error=%w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CartRepository) ReassignItems(c context.Context, fromCartID, toCartID uuid.UUID) error {
	_, err := r.db.Exec(
		c,
		`UPDATE cart_items SET cart_id = $2, updated_at = now() WHERE cart_id = $1`,
		fromCartID, toCartID,
	)
	if err != nil {
		return fmt.Errorf("failed reassigning cart items with error=%w", err)
	}
	return nil
}

func (r *CartRepository) UpdateTotals(
	c context.Context,
	cartID uuid.UUID,
	totals pricing.Totals,
) error {
	_, err := r.db.Exec(
		c,
		`UPDATE carts SET
			delivery_total_with_vat = $2,
			delivery_total_without_vat = $3,
			collection_total_with_vat = $4,
			collection_total_without_vat = $5,
			sub_total_with_vat = $6,
			sub_total_without_vat = $7,
			delivery_charge = $8,
			delivery_vat = $9,
			vat = $10,
			total_price_with_vat = $11,
			total_price_without_vat = $12,
			total_price = $13,
			updated_at = now()
		 WHERE id = $1`,
		cartID,
		decimalToNumeric(totals.DeliveryWithVat),
		decimalToNumeric(totals.DeliveryWithoutVat),
		decimalToNumeric(totals.CollectionWithVat),
		decimalToNumeric(totals.CollectionWithoutVat),
		decimalToNumeric(totals.SubTotalWithVat),
		decimalToNumeric(totals.SubTotalWithoutVat),
		decimalToNumeric(totals.DeliveryCharge),
		decimalToNumeric(totals.DeliveryVat),
		decimalToNumeric(totals.Vat),
		decimalToNumeric(totals.TotalWithVat),
		decimalToNumeric(totals.TotalWithoutVat),
		decimalToNumeric(totals.SubTotalWithVat),
	)
	if err != nil {
		return fmt.Errorf("failed updating cart totals with error=%w", err)
	}
	return nil
}

func (r *CartRepository) FindInventoryByID(c context.Context, id uuid.UUID) (*Inventory, error) {
	inventory := Inventory{}
	err := r.db.QueryRow(
		c,
		`SELECT id, product_id, stock, held_stock, deliverable, collectable
		   FROM inventories WHERE id = $1`,
		id,
	).Scan(
		&inventory.ID,
		&inventory.ProductID,
		&inventory.Stock,
		&inventory.HeldStock,
		&inventory.Deliverable,
		&inventory.Collectable,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed finding inventoryId=%s with error=%w", id.String(), err)
	}
	return &inventory, nil
}

func (r *CartRepository) UserExists(c context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		c,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed checking userId=%s with error=%w", userID.String(), err)
	}
	return exists, nil
}

func (r *CartRepository) AcquireOwnerLock(c context.Context, userID uuid.UUID) error {
	key := int64(binary.BigEndian.Uint64(userID[:8]))
	_, err := r.db.Exec(c, `SELECT pg_advisory_xact_lock($1)`, key)
	if err != nil {
		return fmt.Errorf("failed acquiring cart lock for userId=%s with error=%w", userID.String(), err)
	}
	return nil
}

func (r *CartRepository) WithTx(c context.Context, fn func(Store) error) error {
	tx, err := r.pool.BeginTx(c, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			zerologRollback(c, err)
		}
	}()

	err = fn(&CartRepository{db: tx, pool: r.pool})
	if err != nil {
		return err
	}

	err = tx.Commit(c)
	if err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return nil
}
