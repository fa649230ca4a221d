package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartController "github.com/tradeyard/storefront/internal/cart/controller"
	cartRepository "github.com/tradeyard/storefront/internal/cart/repository"
	cartService "github.com/tradeyard/storefront/internal/cart/service"
	"github.com/tradeyard/storefront/internal/config"
	"github.com/tradeyard/storefront/internal/constants"
	"github.com/tradeyard/storefront/internal/infra"
	"github.com/tradeyard/storefront/internal/log"
	"github.com/tradeyard/storefront/internal/middleware"
	"github.com/tradeyard/storefront/internal/otel"
	"github.com/tradeyard/storefront/internal/settings"
	inventoryController "github.com/tradeyard/storefront/internal/inventory/controller"
	inventoryRepository "github.com/tradeyard/storefront/internal/inventory/repository"
	inventoryService "github.com/tradeyard/storefront/internal/inventory/service"
	userController "github.com/tradeyard/storefront/internal/user/controller"
	userRepository "github.com/tradeyard/storefront/internal/user/repository"
	userService "github.com/tradeyard/storefront/internal/user/service"
)

func RunStorefrontService(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_APP_NAME, constants.APP_STOREFRONT_SERVICE).
		Str(log.KEY_TAG, "main RunStorefrontService").
		Logger()

	logger = logger.With().Str(log.KEY_PROCESS, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.APP_STOREFRONT_SERVICE)
	logger = logger.With().Any(log.KEY_CONFIG, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.APP_STOREFRONT_SERVICE, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = otel.ShutdownOtel(c, otelShutdowns)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger = logger.With().Str(log.KEY_PROCESS, "shutting down database").Logger()
		logger.Info().Msg("shutting down database")
		db.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(log.KEY_PROCESS, "shutting down cache").Logger()
		logger.Info().Msg("shutting down cache")
		err = cache.Close()
		if err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	settingsStore := settings.NewStore(db, cache)
	carts := cartService.NewCartService(cartRepository.NewCartRepository(db), settingsStore)
	inventories := inventoryService.NewInventoryService(
		inventoryRepository.NewInventoryRepository(db),
		cache,
	)
	users := userService.NewUserService(userRepository.NewUserRepository(db), cfg.Application)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Use(
		otelmux.Middleware(constants.APP_STOREFRONT_SERVICE),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.Auth(cfg.Application),
	)
	cartController.AttachCartController(router, &carts)
	inventoryController.AttachInventoryController(router, &inventories)
	userController.AttachUserController(router, &users, carts)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KEY_PROCESS, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KEY_PROCESS, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KEY_PROCESS, "shutting down http server").Logger()
	logger.Info().Msg("received interruption signal, shutting down http server")
	err = httpServer.Shutdown(context.Background())
	if err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
