package server

import (
	"net/http"

	"secondhand/internal/config"
	"secondhand/internal/handler"
	"secondhand/internal/middleware"
	"secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/labstack/echo/v4"
)

type usecases struct {
	users    *usecase.UserUsecase
	products *usecase.ProductUsecase
	carts    *usecase.CartUsecase
	orders   *usecase.OrderUsecase
	audit    *usecase.AuditUsecase
}

func registerRoutes(e *echo.Echo, cfg config.Config, clock usecase.Clock, userRepo repository.UserRepository, authLimiter echo.MiddlewareFunc, uc usecases) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	//アップロード画像（ローカル保存のとき）
	if cfg.ImageURLPrefix != "" && cfg.UploadDir != "" {
		e.Static(cfg.ImageURLPrefix, cfg.UploadDir)
	}

	authJWT := middleware.AuthJWT(cfg, clock)

	handler.NewUserHandler(uc.users).RegisterRoutes(e, authJWT, userRepo, authLimiter)
	handler.NewProductHandler(uc.products).RegisterRoutes(e, authJWT, userRepo)
	handler.NewCartHandler(uc.carts).RegisterRoutes(e, authJWT, userRepo)
	handler.NewOrderHandler(uc.orders).RegisterRoutes(e, authJWT, userRepo)
	handler.NewAdminHandler(uc.audit).RegisterRoutes(e, authJWT, userRepo)
}
