package server

import (
	"errors"

	"github.com/fathima-sithara/todo-service/internal/config"
	"github.com/fathima-sithara/todo-service/internal/database"
	"github.com/fathima-sithara/todo-service/internal/handlers"
	"github.com/fathima-sithara/todo-service/internal/metrics"
	"github.com/fathima-sithara/todo-service/internal/middleware"
	"github.com/fathima-sithara/todo-service/internal/routes"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer needs beyond the handlers.
type Deps struct {
	Routes   routes.Options
	Health   database.Pinger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, h *handlers.Handler, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           cfg.App.ReadTimeout,
		WriteTimeout:          cfg.App.WriteTimeout,
		IdleTimeout:           cfg.App.IdleTimeout,
		DisableStartupMessage: !cfg.IsDevelopment(),
		ErrorHandler:          errorHandler(deps.Logger),
	})

	// Global Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		app.Use(middleware.Metrics(deps.Metrics))
	}
	app.Use(cors.New())

	if deps.Health != nil {
		app.Get("/healthz", handlers.Health(deps.Health, deps.Logger))
	}
	if deps.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(deps.Gatherer))
	}

	routes.Setup(app, h, deps.Routes)

	return app
}

// errorHandler keeps the {"message": ...} body for errors that escape the
// handlers, such as unknown routes and recovered panics.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.JSONError(c, fe.Code, fe.Message)
		}
		logger.Error("unhandled error",
			zap.String("path", c.Path()),
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.Error(err),
		)
		return utils.JSONError(c, fiber.StatusInternalServerError, utils.MsgInternalError)
	}
}
