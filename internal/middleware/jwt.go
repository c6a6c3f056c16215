package middleware

import (
	"strings"

	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

const (
	LocalClaims   = "claims"
	LocalUsername = "username"

	MsgMissingToken = "Unauthorized: Missing token"
	MsgInvalidToken = "Forbidden: Invalid token"
	MsgAccessDenied = "Forbidden: Access denied"
)

// RequireAuth verifies the bearer token. A missing header is 401; anything
// else wrong with it (scheme, signature, algorithm, expiry) is 403.
func RequireAuth(jwtMgr *utils.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return utils.JSONError(c, fiber.StatusUnauthorized, MsgMissingToken)
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return utils.JSONError(c, fiber.StatusForbidden, MsgInvalidToken)
		}
		claims, err := jwtMgr.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return utils.JSONError(c, fiber.StatusForbidden, MsgInvalidToken)
		}
		c.Locals(LocalClaims, claims)
		c.Locals(LocalUsername, claims.Username)
		return c.Next()
	}
}

// RequireSelf rejects requests whose token user differs from the :param
// route parameter. It must run after RequireAuth.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Username(c) != c.Params(param) {
			return utils.JSONError(c, fiber.StatusForbidden, MsgAccessDenied)
		}
		return c.Next()
	}
}

// Username returns the authenticated username, or "" on public routes.
func Username(c *fiber.Ctx) string {
	u, _ := c.Locals(LocalUsername).(string)
	return u
}

func Claims(c *fiber.Ctx) *utils.Claims {
	cl, _ := c.Locals(LocalClaims).(*utils.Claims)
	return cl
}
