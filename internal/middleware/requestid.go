package middleware

import (
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	LocalRequestID  = "request_id"
)

// RequestID reuses an incoming X-Request-ID or generates one, echoes it on
// the response and exposes it through Locals and the user context.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := fiberutils.CopyString(c.Get(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Locals(LocalRequestID, id)
		c.SetUserContext(utils.ContextWithRequestID(c.UserContext(), id))
		return c.Next()
	}
}

func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalRequestID).(string)
	return id
}
