package routes

import (
	"github.com/fathima-sithara/todo-service/internal/handlers"
	"github.com/fathima-sithara/todo-service/internal/middleware"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Options struct {
	JWT *utils.JWTManager
	// Limiter guards /signup and /login. Nil disables rate limiting.
	Limiter              middleware.Limiter
	ProtectAllTodoRoutes bool
	EnforceOwnership     bool
	Logger               *zap.Logger
}

func Setup(app *fiber.App, h *handlers.Handler, opts Options) {
	authMiddleware := middleware.RequireAuth(opts.JWT)

	var public []fiber.Handler
	if opts.Limiter != nil {
		public = append(public, middleware.RateLimit(opts.Limiter, opts.Logger))
	}
	app.Post("/signup", chain(public, h.Signup)...)
	app.Post("/login", chain(public, h.Login)...)

	// routes keyed by :username
	self := []fiber.Handler{authMiddleware}
	if opts.EnforceOwnership {
		self = append(self, middleware.RequireSelf("username"))
	}

	var todoWrite []fiber.Handler
	if opts.ProtectAllTodoRoutes {
		todoWrite = append(todoWrite, authMiddleware)
	}

	api := app.Group("/api")

	user := api.Group("/user")
	user.Get("/:username", chain(self, h.GetUser)...)
	user.Put("/:username", chain(self, h.UpdateUser)...)

	todos := api.Group("/todos")
	todos.Post("", chain(todoWrite, h.CreateTodo)...)
	todos.Get("/:username", chain(self, h.ListTodos)...)
	todos.Put("/:id", authMiddleware, h.UpdateTodo)
	todos.Delete("/:id", chain(todoWrite, h.DeleteTodo)...)
}

func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}
