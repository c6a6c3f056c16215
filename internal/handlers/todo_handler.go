package handlers

import (
	"github.com/fathima-sithara/todo-service/internal/middleware"
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type createTodoReq struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

func (h *Handler) CreateTodo(c *fiber.Ctx) error {
	var req createTodoReq
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, utils.MsgInvalidBody)
	}
	todo, err := h.todos.Create(c.UserContext(), middleware.Username(c), req.Username, req.Content)
	if err != nil {
		return h.fail(c, "create todo", err)
	}
	return utils.JSONMessage(c, fiber.StatusCreated, MsgTodoAdded, fiber.Map{"todo": todo})
}

func (h *Handler) ListTodos(c *fiber.Ctx) error {
	todos, err := h.todos.ListByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return h.fail(c, "list todos", err)
	}
	return c.Status(fiber.StatusOK).JSON(todos)
}

func (h *Handler) UpdateTodo(c *fiber.Ctx) error {
	var req utils.TodoUpdateInput
	if err := utils.DecodeAllowed(c.Body(), utils.TodoUpdateFields, &req); err != nil {
		return h.fail(c, "update todo", err)
	}
	todo, err := h.todos.Update(c.UserContext(), middleware.Username(c), c.Params("id"), &req)
	if err != nil {
		return h.fail(c, "update todo", err)
	}
	return c.Status(fiber.StatusOK).JSON(todo)
}

func (h *Handler) DeleteTodo(c *fiber.Ctx) error {
	todo, err := h.todos.Delete(c.UserContext(), middleware.Username(c), c.Params("id"))
	if err != nil {
		return h.fail(c, "delete todo", err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, MsgTodoDeleted, fiber.Map{"todo": todo})
}
