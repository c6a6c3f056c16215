package middleware

import (
	"strconv"
	"time"

	"github.com/fathima-sithara/todo-service/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency labelled by the matched route
// pattern, so /api/todos/:id is one series regardless of id.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if status == fiber.StatusNotFound && route == "/" {
			route = "unmatched"
		}

		m.Requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.Latency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
