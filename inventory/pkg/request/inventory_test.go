package request

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, query string) ListInventories {
	t.Helper()
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	return ParseListInventories(values)
}

func TestParseListInventoriesDefaults(t *testing.T) {
	param := parse(t, "")

	assert.Equal(t, int32(1), param.Page)
	assert.Equal(t, int32(12), param.Limit)
	assert.Empty(t, param.SortBy)
	assert.Empty(t, param.Facets)
}

func TestParseListInventoriesMalformedValuesDegrade(t *testing.T) {
	param := parse(t, "page=zero&limit=-3&minPrice=abc&primaryCategoryId=not-a-uuid&isPrimaryRequired=maybe")

	assert.Equal(t, int32(1), param.Page)
	assert.Equal(t, int32(12), param.Limit)
	assert.False(t, param.MinPrice.Valid)
	assert.False(t, param.PrimaryCategoryID.Valid)
	assert.False(t, param.IsPrimaryRequired)
}

func TestParseListInventoriesSplitsFacetValues(t *testing.T) {
	param := parse(t, "colour=red,blue, green&search=boiler")

	require.Contains(t, param.Facets, "colour")
	assert.Equal(t, []string{"red", "blue", "green"}, param.Facets["colour"])
	assert.NotContains(t, param.Facets, "search", "reserved keys never become facets")
}

func TestParseListInventoriesReservedKeysStayOutOfFacets(t *testing.T) {
	param := parse(t, "brand=A,B&minPrice=5&sort_by=newest&isSecondaryRequired=true")

	assert.Empty(t, param.Facets)
	assert.Equal(t, []string{"A", "B"}, param.Brands)
	assert.True(t, param.MinPrice.Valid)
	assert.True(t, param.IsSecondaryRequired)
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	first := parse(t, "colour=red,blue&brand=A&page=2")
	second := parse(t, "brand=A&page=2&colour=blue,red")

	assert.Equal(t, first.CacheKey(), second.CacheKey())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, int32(0), parse(t, "").Offset())
	assert.Equal(t, int32(24), parse(t, "page=3&limit=12").Offset())
}
