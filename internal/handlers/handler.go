package handlers

import (
	"errors"

	"github.com/fathima-sithara/todo-service/internal/middleware"
	"github.com/fathima-sithara/todo-service/internal/services"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	MsgUserCreated    = "User created successfully"
	MsgLoginOK        = "Login successful"
	MsgTodoAdded      = "Todo added successfully"
	MsgTodoDeleted    = "Todo deleted successfully"
	MsgUserNotFound   = "User not found"
	MsgTodoNotFound   = "Todo not found"
	MsgBadCredentials = "Invalid username or password"
	MsgEmailExists    = "Email already exists"
	MsgUsernameExists = "Username already exists"
)

type Handler struct {
	auth   services.AuthService
	users  services.UserService
	todos  services.TodoService
	logger *zap.Logger
}

func NewHandler(auth services.AuthService, users services.UserService, todos services.TodoService, logger *zap.Logger) *Handler {
	return &Handler{auth: auth, users: users, todos: todos, logger: logger}
}

// fail maps a service error onto the response contract. Unknown errors are
// logged and answered with a generic 500.
func (h *Handler) fail(c *fiber.Ctx, op string, err error) error {
	var ve *utils.ValidationError
	switch {
	case errors.As(err, &ve):
		return utils.JSONError(c, fiber.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrEmailExists):
		return utils.JSONError(c, fiber.StatusBadRequest, MsgEmailExists)
	case errors.Is(err, services.ErrUsernameExists):
		return utils.JSONError(c, fiber.StatusBadRequest, MsgUsernameExists)
	case errors.Is(err, services.ErrUserNotFound):
		return utils.JSONError(c, fiber.StatusNotFound, MsgUserNotFound)
	case errors.Is(err, services.ErrTodoNotFound):
		return utils.JSONError(c, fiber.StatusNotFound, MsgTodoNotFound)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.JSONError(c, fiber.StatusUnauthorized, MsgBadCredentials)
	case errors.Is(err, services.ErrForbidden):
		return utils.JSONError(c, fiber.StatusForbidden, middleware.MsgAccessDenied)
	}

	h.logger.Error(op+" failed",
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.Error(err),
	)
	return utils.JSONError(c, fiber.StatusInternalServerError, utils.MsgInternalError)
}
