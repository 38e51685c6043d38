package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDKey is the header carrying the request correlation id
const RequestIDKey = "X-Request-ID"

// FromContext returns the request-scoped logger installed by the request id
// middleware. Outside that middleware it falls back to the global logger
// tagged with whatever id the request carries.
func FromContext(c echo.Context) *zap.Logger {
	if log, ok := c.Get("logger").(*zap.Logger); ok {
		return log
	}

	requestID, _ := c.Get("request_id").(string)
	if requestID == "" {
		requestID = c.Request().Header.Get(RequestIDKey)
	}
	if requestID == "" {
		requestID = "unknown"
	}
	return GetLogger().With(zap.String("request_id", requestID))
}
