package repository

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tradeyard/storefront/inventory/pkg/request"
)

const listColumns = `i.id, i.product_id, p.name, p.description, p.model, p.brand_name,
	p.retail_price, p.promotional_price, p.sold_count,
	i.stock, i.held_stock, i.deliverable, i.collectable, i.created_at, i.updated_at`

const listFrom = ` FROM inventories i JOIN products p ON p.id = i.product_id`

// ListQuery is the assembled listing statement pair. Empty means a required
// category id was missing: no statement should run and the result is an
// empty page with totalCount zero.
type ListQuery struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
	Page      int32
	Limit     int32
	Empty     bool
}

type categoryLevel struct {
	column   string
	id       uuid.NullUUID
	required bool
}

// BuildListQuery translates parsed listing params into SQL. The filter is a
// conjunction of: the category clause OR the free-text search clause (search
// wins when present and bypasses required-category gating), plus price
// bounds, an exact brand-name list, and one EXISTS clause per facet whose
// name appears in allowedFacets. Unknown facet names are dropped before any
// SQL is built. An empty conjunction matches everything.
func BuildListQuery(
	param request.ListInventories,
	allowedFacets map[string]struct{},
) ListQuery {
	var conditions []string
	var args []any

	next := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	if param.Search != "" {
		pattern := next("%" + param.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE %[1]s OR p.description ILIKE %[1]s OR p.model ILIKE %[1]s OR p.brand_name ILIKE %[1]s)",
			pattern,
		))
	} else {
		levels := []categoryLevel{
			{"p.primary_category_id", param.PrimaryCategoryID, param.IsPrimaryRequired},
			{"p.secondary_category_id", param.SecondaryCategoryID, param.IsSecondaryRequired},
			{"p.tertiary_category_id", param.TertiaryCategoryID, param.IsTertiaryRequired},
			{"p.quaternary_category_id", param.QuaternaryCategoryID, param.IsQuaternaryRequired},
		}
		for _, level := range levels {
			if level.required && !level.id.Valid {
				return ListQuery{Page: param.Page, Limit: param.Limit, Empty: true}
			}
			if level.id.Valid {
				conditions = append(conditions, level.column+" = "+next(level.id.UUID))
			}
		}
	}

	if param.MinPrice.Valid {
		conditions = append(conditions, "p.retail_price >= "+next(decimalToNumeric(param.MinPrice.Decimal)))
	}
	if param.MaxPrice.Valid {
		conditions = append(conditions, "p.retail_price <= "+next(decimalToNumeric(param.MaxPrice.Decimal)))
	}
	if len(param.Brands) > 0 {
		conditions = append(conditions, "p.brand_name = ANY("+next(param.Brands)+")")
	}

	for _, name := range sortedFacetNames(param.Facets, allowedFacets) {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_template_fields f WHERE f.template_id = p.template_id AND f.name = %s AND f.value = ANY(%s))",
			next(name), next(param.Facets[name]),
		))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countArgs := append([]any(nil), args...)
	sql := "SELECT " + listColumns + listFrom + where +
		" ORDER BY " + orderBy(param.SortBy) +
		" LIMIT " + next(param.Limit) + " OFFSET " + next(param.Offset())

	return ListQuery{
		SQL:       sql,
		Args:      args,
		CountSQL:  "SELECT count(*)" + listFrom + where,
		CountArgs: countArgs,
		Page:      param.Page,
		Limit:     param.Limit,
	}
}

// sortedFacetNames keeps only allow-listed names, sorted so the statement
// text is deterministic for a given param set.
func sortedFacetNames(
	facets map[string][]string,
	allowed map[string]struct{},
) []string {
	names := make([]string, 0, len(facets))
	for name := range facets {
		if _, ok := allowed[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func orderBy(sortBy string) string {
	switch sortBy {
	case "price_low_to_high":
		return "p.retail_price ASC"
	case "price_high_to_low":
		return "p.retail_price DESC"
	case "bestselling":
		return "p.sold_count DESC"
	default:
		// newest, relevance and anything unrecognized
		return "i.created_at DESC"
	}
}
