// Package settings exposes the store-configured VAT rate and delivery charge
// that cart aggregation runs on.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tradeyard/storefront/internal/log"
	inOtel "github.com/tradeyard/storefront/internal/otel"
	"github.com/tradeyard/storefront/internal/pricing"
)

const (
	cacheKey = "storefront:settings"
	cacheTtl = 5 * time.Minute
)

type Source interface {
	Current(c context.Context) (pricing.Settings, error)
}

type Store struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

func NewStore(pool *pgxpool.Pool, cache *redis.Client) *Store {
	return &Store{pool: pool, cache: cache}
}

func (s *Store) Current(c context.Context) (pricing.Settings, error) {
	c, span := inOtel.Tracer.Start(c, "SettingsStore Current")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "SettingsStore Current").
		Str(log.KEY_CACHE_KEY, cacheKey).
		Logger()

	jsonCache, err := s.cache.Get(c, cacheKey).Result()
	if err == nil {
		cached := pricing.Settings{}
		err = json.Unmarshal([]byte(jsonCache), &cached)
		if err == nil {
			return cached, nil
		}
		err = fmt.Errorf("failed unmarshaling settings cache with error=%w", err)
		logger.Info().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(log.KEY_PROCESS, "finding settings in db").Logger()
	logger.Info().Msg("finding settings in db")
	var percentVat, deliveryCharge pgtype.Numeric
	err = s.pool.QueryRow(
		c,
		`SELECT percent_vat, default_delivery_charge
		   FROM store_settings
		  ORDER BY updated_at DESC
		  LIMIT 1`,
	).Scan(&percentVat, &deliveryCharge)
	if err != nil {
		err = fmt.Errorf("failed finding settings in db with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return pricing.Settings{}, err
	}
	current := pricing.Settings{
		VatRate:        decimal.NewFromBigInt(percentVat.Int, percentVat.Exp),
		DeliveryCharge: decimal.NewFromBigInt(deliveryCharge.Int, deliveryCharge.Exp),
	}
	logger = logger.With().Any(log.KEY_SETTINGS, current).Logger()
	logger.Info().Msg("found settings in db")

	logger = logger.With().Str(log.KEY_PROCESS, "inserting settings to cache").Logger()
	encoded, err := json.Marshal(current)
	if err != nil {
		err = fmt.Errorf("failed marshaling settings with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return current, nil
	}
	err = s.cache.Set(c, cacheKey, encoded, cacheTtl).Err()
	if err != nil {
		err = fmt.Errorf("failed inserting settings to cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}

	return current, nil
}
