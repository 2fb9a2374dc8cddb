package middleware

import (
	"net/http"
	"strings"

	"secondhand/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextのroleが許可リストにあるか確認します。
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	msg := "Only " + strings.Join(names, " or ") + " can perform this action."

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(model.Role)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token.", codeUnauthorized))
			}

			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, errorJSON(msg, codeForbidden))
		}
	}
}
