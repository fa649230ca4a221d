package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonHttp "github.com/tradeyard/storefront/internal/http"
	"github.com/tradeyard/storefront/internal/log"
	commonOtel "github.com/tradeyard/storefront/internal/otel"
	"github.com/tradeyard/storefront/internal/inventory/otel"
	"github.com/tradeyard/storefront/internal/inventory/service"
	"github.com/tradeyard/storefront/inventory/pkg/request"
)

type InventoryController struct {
	service *service.InventoryService
}

func AttachInventoryController(router *mux.Router, service *service.InventoryService) {
	controller := InventoryController{service: service}

	sub := router.PathPrefix("/inventories").Subrouter()
	sub.HandleFunc("", controller.FindInventories).Methods(http.MethodGet)
}

func (t InventoryController) FindInventories(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "InventoryController FindInventories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KEY_TAG, "InventoryController FindInventories").
		Str(log.KEY_QUERY_PARAMS, r.URL.RawQuery).
		Logger()

	param := request.ParseListInventories(r.URL.Query())

	logger = logger.With().Str(log.KEY_PROCESS, "finding inventories").Logger()
	logger.Info().Msg("finding inventories")
	c = logger.WithContext(c)
	listing, err := t.service.FindInventories(c, param)
	if err != nil {
		err = fmt.Errorf("failed finding inventories with error=%w", err)
		commonOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found inventories")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found inventories",
		"data": map[string]interface{}{
			"inventories": listing.Inventories,
			"pagination":  listing.Pagination,
		},
	})
}
