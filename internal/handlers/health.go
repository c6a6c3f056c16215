package handlers

import (
	"github.com/fathima-sithara/todo-service/internal/database"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Health reports 503 while the document store cannot be pinged.
func Health(db database.Pinger, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := db.Ping(c.UserContext()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
