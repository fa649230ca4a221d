package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryItem is one listing row: the inventory joined to its product.
type InventoryItem struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	Name             string
	Description      string
	Model            string
	BrandName        string
	RetailPrice      decimal.NullDecimal
	PromotionalPrice decimal.NullDecimal
	SoldCount        int32
	Stock            int32
	HeldStock        int32
	Deliverable      bool
	Collectable      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Lister is the listing data-access contract the service depends on.
type Lister interface {
	AllowedFacetNames(c context.Context) (map[string]struct{}, error)
	ListInventories(c context.Context, q ListQuery) ([]InventoryItem, int64, error)
}

type InventoryRepository struct {
	pool *pgxpool.Pool
}

var _ Lister = (*InventoryRepository)(nil)

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// AllowedFacetNames returns every template field name known to the catalog.
// Listing facets are checked against this set so arbitrary querystring keys
// never reach a statement.
func (r *InventoryRepository) AllowedFacetNames(
	c context.Context,
) (map[string]struct{}, error) {
	rows, err := r.pool.Query(c, "SELECT DISTINCT name FROM product_template_fields")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := map[string]struct{}{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}

// ListInventories runs the assembled statement pair: the count first, then
// the page. An Empty query returns a zero result without touching the pool.
func (r *InventoryRepository) ListInventories(
	c context.Context,
	q ListQuery,
) ([]InventoryItem, int64, error) {
	if q.Empty {
		return nil, 0, nil
	}

	var totalCount int64
	err := r.pool.QueryRow(c, q.CountSQL, q.CountArgs...).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}
	if totalCount == 0 {
		return nil, 0, nil
	}

	rows, err := r.pool.Query(c, q.SQL, q.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []InventoryItem{}
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, totalCount, rows.Err()
}

func scanInventoryItem(rows interface{ Scan(dest ...any) error }) (InventoryItem, error) {
	item := InventoryItem{}
	var retail, promotional pgtype.Numeric
	err := rows.Scan(
		&item.ID,
		&item.ProductID,
		&item.Name,
		&item.Description,
		&item.Model,
		&item.BrandName,
		&retail,
		&promotional,
		&item.SoldCount,
		&item.Stock,
		&item.HeldStock,
		&item.Deliverable,
		&item.Collectable,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return InventoryItem{}, err
	}
	item.RetailPrice = numericToNullDecimal(retail)
	item.PromotionalPrice = numericToNullDecimal(promotional)
	return item, nil
}

func numericToNullDecimal(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromBigInt(n.Int, n.Exp), Valid: true}
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}
