package middleware

import (
	"errors"
	"net/http"

	"secondhand/internal/domain/model"
	"secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/labstack/echo/v4"
)

// トークンのuser_idでDBから最新のuserを取り直す。
// 停止・削除・ロール変更はトークンの期限を待たずに反映される
func AccountGuard(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたuser_id を取得する
			userID, ok := c.Get(CtxUserIDKey).(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token.", codeUnauthorized))
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && user == nil) {
				return c.JSON(http.StatusUnauthorized, errorJSON("Invalid or expired token.", codeUnauthorized))
			}
			if err != nil {
				c.Set(CtxErrorKey, err)
				return c.JSON(http.StatusInternalServerError, errorJSON("Internal server error.", codeInternal))
			}

			if !user.IsAvailable {
				return c.JSON(http.StatusForbidden, errorJSON("Account is disabled.", codeForbidden))
			}

			//roleはDBの値で上書き
			c.Set(CtxUserRoleKey, user.Role)

			return next(c)
		}
	}
}

// ガードを通った呼び出し元
func CurrentActor(c echo.Context) usecase.Actor {
	id, _ := c.Get(CtxUserIDKey).(string)
	role, _ := c.Get(CtxUserRoleKey).(model.Role)
	return usecase.Actor{UserID: id, Role: role}
}
