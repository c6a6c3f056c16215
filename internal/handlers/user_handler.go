package handlers

import (
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetUser(c *fiber.Ctx) error {
	u, err := h.users.Get(c.UserContext(), c.Params("username"))
	if err != nil {
		return h.fail(c, "get user", err)
	}
	return c.Status(fiber.StatusOK).JSON(u)
}

// UpdateUser accepts only the profile fields listed in utils.UserUpdateFields.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var req utils.UserUpdateInput
	if err := utils.DecodeAllowed(c.Body(), utils.UserUpdateFields, &req); err != nil {
		return h.fail(c, "update user", err)
	}
	u, err := h.users.Update(c.UserContext(), c.Params("username"), &req)
	if err != nil {
		return h.fail(c, "update user", err)
	}
	return c.Status(fiber.StatusOK).JSON(u)
}
