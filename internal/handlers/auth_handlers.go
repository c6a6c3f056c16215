package handlers

import (
	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Signup(c *fiber.Ctx) error {
	var req utils.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, utils.MsgInvalidBody)
	}
	if _, err := h.auth.Signup(c.UserContext(), &req); err != nil {
		return h.fail(c, "signup", err)
	}
	return utils.JSONMessage(c, fiber.StatusCreated, MsgUserCreated, nil)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, utils.MsgInvalidBody)
	}
	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return h.fail(c, "login", err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, MsgLoginOK, fiber.Map{"token": res.Token})
}
