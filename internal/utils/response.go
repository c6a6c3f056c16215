package utils

import "github.com/gofiber/fiber/v2"

const MsgInternalError = "Internal server error"

// JSONError writes the {"message": ...} body used for every failure.
func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func JSONMessage(c *fiber.Ctx, status int, msg string, extra fiber.Map) error {
	body := fiber.Map{"message": msg}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}
