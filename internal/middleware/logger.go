package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger logs one entry per request. Method, path and ip are copied because
// fiber reuses their buffers once the handler returns.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()

		fields := []zap.Field{
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.String("ip", utils.CopyString(c.IP())),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("request_id", RequestIDFrom(c)),
		}

		if err != nil {
			logger.Error("HTTP Request Error", append(fields, zap.Error(err))...)
			return err
		}

		logger.Info("HTTP Request", fields...)
		return nil
	}
}
