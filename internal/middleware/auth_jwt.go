package middleware

import (
	"net/http"
	"strings"

	"secondhand/internal/config"
	"secondhand/internal/infra/token"
	"secondhand/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // string
	CtxUserRoleKey = "user_role" // model.Role
	CtxErrorKey    = "error_cause"
)

// bearerAuth用のJWT検証ミドルウェア。DBは見ない
// 期限は発行と同じclockで判定する
func AuthJWT(cfg config.Config, clock usecase.Clock) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Bearer形式か確認してtokenを抜く
			authz := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("No token provided.", codeUnauthorized))
			}

			//署名・期限・claimsを検証する
			claims, err := token.Parse(cfg.JWTSecret, strings.TrimSpace(parts[1]), clock.Now())
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token.", codeUnauthorized))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, claims.Role)

			return next(c)
		}
	}
}

const (
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeRateLimited  = "RATE_LIMITED"
	codeInternal     = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorJSON(msg, code string) errorResponse {
	return errorResponse{Error: msg, Code: code}
}
