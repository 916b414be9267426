package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/farmstand/farmstand/internal/constants"
)

var Tracer = otel.Tracer(constants.APP_PRODUCT_SERVICE)
