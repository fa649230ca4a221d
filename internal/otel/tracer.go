package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/tradeyard/storefront/internal/constants"
)

var Tracer = otel.Tracer(constants.APP_STOREFRONT_SERVICE)
