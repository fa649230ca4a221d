package repository

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeyard/storefront/inventory/pkg/request"
)

func listParams(t *testing.T, query string) request.ListInventories {
	t.Helper()
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	return request.ParseListInventories(values)
}

func facetAllowList() map[string]struct{} {
	return map[string]struct{}{"colour": {}, "fuel_type": {}}
}

func TestBuildListQueryMatchesAllWithoutFilters(t *testing.T) {
	q := BuildListQuery(listParams(t, ""), facetAllowList())

	assert.False(t, q.Empty)
	assert.NotContains(t, q.SQL, "WHERE")
	assert.NotContains(t, q.CountSQL, "WHERE")
	assert.Equal(t, int32(1), q.Page)
	assert.Equal(t, int32(12), q.Limit)
	assert.Equal(t, []any{int32(12), int32(0)}, q.Args)
	assert.Empty(t, q.CountArgs)
}

func TestBuildListQueryRequiredCategoryShortCircuits(t *testing.T) {
	q := BuildListQuery(listParams(t, "isPrimaryRequired=true"), facetAllowList())

	assert.True(t, q.Empty)
	assert.Empty(t, q.SQL)
	assert.Empty(t, q.CountSQL)
}

func TestBuildListQueryRequiredCategorySatisfiedById(t *testing.T) {
	id := uuid.New()
	q := BuildListQuery(
		listParams(t, "isPrimaryRequired=true&primaryCategoryId="+id.String()),
		facetAllowList(),
	)

	assert.False(t, q.Empty)
	assert.Contains(t, q.SQL, "p.primary_category_id = $1")
	assert.Equal(t, id, q.Args[0])
}

func TestBuildListQuerySearchBypassesRequiredCategories(t *testing.T) {
	q := BuildListQuery(
		listParams(t, "search=boiler&isPrimaryRequired=true"),
		facetAllowList(),
	)

	assert.False(t, q.Empty)
	assert.Contains(t, q.SQL, "ILIKE")
	assert.NotContains(t, q.SQL, "category_id", "search and category clauses are mutually exclusive")
	assert.Equal(t, "%boiler%", q.Args[0])
}

func TestBuildListQueryBrandIsExactList(t *testing.T) {
	q := BuildListQuery(listParams(t, "brand=A,B"), facetAllowList())

	assert.Contains(t, q.SQL, "p.brand_name = ANY($1)")
	assert.NotContains(t, q.SQL, "product_template_fields",
		"brand must never fall through to the facet path")
	assert.Equal(t, []string{"A", "B"}, q.Args[0])
}

func TestBuildListQueryIgnoresUnknownFacets(t *testing.T) {
	q := BuildListQuery(listParams(t, "mystery=1,2"), facetAllowList())

	assert.NotContains(t, q.SQL, "WHERE")
	assert.NotContains(t, q.SQL, "product_template_fields")
}

func TestBuildListQueryAllowedFacetBecomesExistsClause(t *testing.T) {
	q := BuildListQuery(listParams(t, "colour=red,blue"), facetAllowList())

	assert.Contains(t, q.SQL,
		"EXISTS (SELECT 1 FROM product_template_fields f WHERE f.template_id = p.template_id AND f.name = $1 AND f.value = ANY($2))")
	assert.Equal(t, "colour", q.Args[0])
	assert.Equal(t, []string{"red", "blue"}, q.Args[1])
}

func TestBuildListQueryFacetsAreConjoined(t *testing.T) {
	q := BuildListQuery(listParams(t, "colour=red&fuel_type=gas"), facetAllowList())

	assert.Equal(t, 2, strings.Count(q.SQL, "EXISTS"), "each facet ANDs its own clause")
	assert.Contains(t, q.SQL, " AND ")
}

func TestBuildListQueryPriceBounds(t *testing.T) {
	q := BuildListQuery(listParams(t, "minPrice=10&maxPrice=99.50"), facetAllowList())

	assert.Contains(t, q.SQL, "p.retail_price >= $1")
	assert.Contains(t, q.SQL, "p.retail_price <= $2")
}

func TestBuildListQueryPagination(t *testing.T) {
	q := BuildListQuery(listParams(t, "page=3&limit=5"), facetAllowList())

	require.Len(t, q.Args, 2)
	assert.Equal(t, int32(5), q.Args[0])
	assert.Equal(t, int32(10), q.Args[1], "offset is (page-1)*limit")
	assert.Empty(t, q.CountArgs, "count statement carries no pagination args")
}

func TestBuildListQuerySortMapping(t *testing.T) {
	tests := []struct {
		sortBy   string
		expected string
	}{
		{"price_low_to_high", "ORDER BY p.retail_price ASC"},
		{"price_high_to_low", "ORDER BY p.retail_price DESC"},
		{"bestselling", "ORDER BY p.sold_count DESC"},
		{"newest", "ORDER BY i.created_at DESC"},
		{"relevance", "ORDER BY i.created_at DESC"},
		{"", "ORDER BY i.created_at DESC"},
		{"garbage", "ORDER BY i.created_at DESC"},
	}
	for _, tt := range tests {
		t.Run("sort_by="+tt.sortBy, func(t *testing.T) {
			q := BuildListQuery(listParams(t, "sort_by="+tt.sortBy), facetAllowList())
			assert.Contains(t, q.SQL, tt.expected)
		})
	}
}

func TestBuildListQueryCountSharesConditions(t *testing.T) {
	q := BuildListQuery(listParams(t, "brand=A&colour=red"), facetAllowList())

	whereStart := strings.Index(q.SQL, " WHERE ")
	require.GreaterOrEqual(t, whereStart, 0)
	where := q.SQL[whereStart:strings.Index(q.SQL, " ORDER BY ")]
	assert.True(t, strings.HasSuffix(q.CountSQL, where),
		"count statement must filter on the same conjunction")
	assert.Equal(t, q.Args[:len(q.CountArgs)], q.CountArgs)
}
