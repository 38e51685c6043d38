package middleware

import (
	"tajeer-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware tags every request with a correlation id. An inbound
// X-Request-ID is kept so the id stays stable across hops; otherwise a new
// one is generated.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(logger.RequestIDKey)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request().Header.Set(logger.RequestIDKey, requestID)
		}
		c.Response().Header().Set(logger.RequestIDKey, requestID)

		c.Set("request_id", requestID)
		c.Set("logger", logger.GetLogger().With(zap.String("request_id", requestID)))

		return next(c)
	}
}
