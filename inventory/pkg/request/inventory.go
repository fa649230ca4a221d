package request

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  int32 = 1
	DefaultLimit int32 = 12
)

// reservedKeys are querystring keys with dedicated handling. Every key
// outside this set is treated as a candidate template-field facet.
var reservedKeys = map[string]struct{}{
	"page":                 {},
	"limit":                {},
	"sort_by":              {},
	"search":               {},
	"minPrice":             {},
	"maxPrice":             {},
	"brand":                {},
	"primaryCategoryId":    {},
	"secondaryCategoryId":  {},
	"tertiaryCategoryId":   {},
	"quaternaryCategoryId": {},
	"isPrimaryRequired":    {},
	"isSecondaryRequired":  {},
	"isTertiaryRequired":   {},
	"isQuaternaryRequired": {},
}

// ListInventories carries the parsed listing querystring. Malformed values
// never fail the request; they degrade to their zero or default form.
type ListInventories struct {
	Page   int32
	Limit  int32
	SortBy string
	Search string

	PrimaryCategoryID    uuid.NullUUID
	SecondaryCategoryID  uuid.NullUUID
	TertiaryCategoryID   uuid.NullUUID
	QuaternaryCategoryID uuid.NullUUID
	IsPrimaryRequired    bool
	IsSecondaryRequired  bool
	IsTertiaryRequired   bool
	IsQuaternaryRequired bool

	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	Brands   []string

	// Facets maps a template-field name to its comma-split candidate values.
	// Keys are collected verbatim here; the repository checks them against
	// the known field names before they reach any query.
	Facets map[string][]string
}

func ParseListInventories(values url.Values) ListInventories {
	param := ListInventories{
		Page:                 parsePositiveInt(values.Get("page"), DefaultPage),
		Limit:                parsePositiveInt(values.Get("limit"), DefaultLimit),
		SortBy:               values.Get("sort_by"),
		Search:               strings.TrimSpace(values.Get("search")),
		PrimaryCategoryID:    parseUUID(values.Get("primaryCategoryId")),
		SecondaryCategoryID:  parseUUID(values.Get("secondaryCategoryId")),
		TertiaryCategoryID:   parseUUID(values.Get("tertiaryCategoryId")),
		QuaternaryCategoryID: parseUUID(values.Get("quaternaryCategoryId")),
		IsPrimaryRequired:    parseBool(values.Get("isPrimaryRequired")),
		IsSecondaryRequired:  parseBool(values.Get("isSecondaryRequired")),
		IsTertiaryRequired:   parseBool(values.Get("isTertiaryRequired")),
		IsQuaternaryRequired: parseBool(values.Get("isQuaternaryRequired")),
		MinPrice:             parseDecimal(values.Get("minPrice")),
		MaxPrice:             parseDecimal(values.Get("maxPrice")),
		Brands:               splitList(values.Get("brand")),
		Facets:               map[string][]string{},
	}
	for key := range values {
		if _, reserved := reservedKeys[key]; reserved {
			continue
		}
		candidates := splitList(values.Get(key))
		if len(candidates) == 0 {
			continue
		}
		param.Facets[key] = candidates
	}
	return param
}

func (p ListInventories) Offset() int32 {
	return (p.Page - 1) * p.Limit
}

// CacheKey is a deterministic encoding of every filter-relevant field, used
// as the redis key suffix for the listing cache.
func (p ListInventories) CacheKey() string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(int(p.Page)))
	values.Set("limit", strconv.Itoa(int(p.Limit)))
	if p.SortBy != "" {
		values.Set("sort_by", p.SortBy)
	}
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	setUUID(values, "primaryCategoryId", p.PrimaryCategoryID)
	setUUID(values, "secondaryCategoryId", p.SecondaryCategoryID)
	setUUID(values, "tertiaryCategoryId", p.TertiaryCategoryID)
	setUUID(values, "quaternaryCategoryId", p.QuaternaryCategoryID)
	setBool(values, "isPrimaryRequired", p.IsPrimaryRequired)
	setBool(values, "isSecondaryRequired", p.IsSecondaryRequired)
	setBool(values, "isTertiaryRequired", p.IsTertiaryRequired)
	setBool(values, "isQuaternaryRequired", p.IsQuaternaryRequired)
	if p.MinPrice.Valid {
		values.Set("minPrice", p.MinPrice.Decimal.String())
	}
	if p.MaxPrice.Valid {
		values.Set("maxPrice", p.MaxPrice.Decimal.String())
	}
	if len(p.Brands) > 0 {
		values.Set("brand", strings.Join(p.Brands, ","))
	}
	for name, candidates := range p.Facets {
		sorted := append([]string(nil), candidates...)
		sort.Strings(sorted)
		values.Set(name, strings.Join(sorted, ","))
	}
	return values.Encode()
}

func parsePositiveInt(raw string, fallback int32) int32 {
	parsed, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || parsed < 1 {
		return fallback
	}
	return int32(parsed)
}

func parseBool(raw string) bool {
	parsed, err := strconv.ParseBool(raw)
	return err == nil && parsed
}

func parseUUID(raw string) uuid.NullUUID {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: parsed, Valid: true}
}

func parseDecimal(raw string) decimal.NullDecimal {
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: parsed, Valid: true}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

func setUUID(values url.Values, key string, id uuid.NullUUID) {
	if id.Valid {
		values.Set(key, id.UUID.String())
	}
}

func setBool(values url.Values, key string, b bool) {
	if b {
		values.Set(key, "true")
	}
}
