package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tradeyard/storefront/internal/log"
	commonOtel "github.com/tradeyard/storefront/internal/otel"
	"github.com/tradeyard/storefront/internal/inventory/otel"
	"github.com/tradeyard/storefront/internal/inventory/repository"
	"github.com/tradeyard/storefront/inventory/pkg/request"
	"github.com/tradeyard/storefront/inventory/pkg/response"
)

const (
	listingCachePrefix = "storefront:inventories:"
	listingCacheTTL    = time.Minute
)

type InventoryService struct {
	lister repository.Lister
	cache  *redis.Client
}

func NewInventoryService(lister repository.Lister, cache *redis.Client) InventoryService {
	return InventoryService{lister: lister, cache: cache}
}

// FindInventories serves the filtered listing, cache-aside on the full
// param encoding. Cache failures fall through to the database.
func (s InventoryService) FindInventories(
	c context.Context,
	param request.ListInventories,
) (response.InventoryList, error) {
	c, span := otel.Tracer.Start(c, "InventoryService FindInventories")
	defer span.End()

	cacheKey := listingCachePrefix + param.CacheKey()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "InventoryService FindInventories").
		Str(log.KEY_CACHE_KEY, cacheKey).
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "finding inventories in cache").Logger()
	logger.Info().Msg("finding inventories in cache")
	cached, err := s.cache.Get(c, cacheKey).Result()
	if err == nil {
		listing := response.InventoryList{}
		err = json.Unmarshal([]byte(cached), &listing)
		if err == nil {
			logger.Info().Msg("found inventories in cache")
			return listing, nil
		}
		err = fmt.Errorf("failed unmarshaling cached inventories with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	} else if !errors.Is(err, redis.Nil) {
		err = fmt.Errorf("failed finding inventories in cache with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(log.KEY_PROCESS, "loading facet names").Logger()
	logger.Info().Msg("loading facet names")
	allowedFacets, err := s.lister.AllowedFacetNames(c)
	if err != nil {
		err = fmt.Errorf("failed loading facet names with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryList{}, err
	}

	query := repository.BuildListQuery(param, allowedFacets)
	if query.Empty {
		logger.Info().Msg("required category missing, serving empty result")
		return response.FromRepository(nil, query.Page, query.Limit, 0), nil
	}

	logger = logger.With().Str(log.KEY_PROCESS, "finding inventories in database").Logger()
	logger.Info().Msg("finding inventories in database")
	items, totalCount, err := s.lister.ListInventories(c, query)
	if err != nil {
		err = fmt.Errorf("failed finding inventories with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryList{}, err
	}
	listing := response.FromRepository(items, query.Page, query.Limit, totalCount)
	logger.Info().
		Int64(log.KEY_PAGINATION, totalCount).
		Msg("found inventories in database")

	logger = logger.With().Str(log.KEY_PROCESS, "inserting inventories to cache").Logger()
	encoded, err := json.Marshal(listing)
	if err == nil {
		err = s.cache.Set(c, cacheKey, encoded, listingCacheTTL).Err()
	}
	if err != nil {
		err = fmt.Errorf("failed inserting inventories to cache with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return listing, nil
	}
	logger.Info().Msg("inserted inventories to cache")

	return listing, nil
}
