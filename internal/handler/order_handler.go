package handler

import (
	"net/http"
	"strings"

	"secondhand/internal/domain/model"
	"secondhand/internal/middleware"
	"secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, authJWT echo.MiddlewareFunc, userRepo repository.UserRepository) {
	g := e.Group("/order")
	g.Use(authJWT)
	g.Use(middleware.AccountGuard(userRepo))

	buyer := middleware.RequireRole(model.RoleBuyer)
	g.POST("/create", h.create, buyer)
	g.GET("/my", h.list, buyer)
	g.GET("/vender", h.sales, middleware.RequireRole(model.RoleVender))
	g.GET("/:id", h.detail, buyer)
}

func (h *OrderHandler) create(c echo.Context) error {
	//二重送信防止キーはヘッダーから受け取る（bodyは見ない）
	idemKey := c.Request().Header.Get(headerIdempotencyKey)

	out, created, err := h.uc.CreateFromCart(c.Request().Context(), middleware.CurrentActor(c), idemKey)
	if err != nil {
		return writeError(c, err)
	}

	if !created {
		return writeOK(c, http.StatusOK, "Order already created.", out)
	}
	return writeOK(c, http.StatusCreated, "Order created successfully.", out)
}

func (h *OrderHandler) list(c echo.Context) error {
	out, err := h.uc.ListMine(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get my orders successfully.", out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), middleware.CurrentActor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get order successfully.", out)
}

// 自分の商品が売れた明細
func (h *OrderHandler) sales(c echo.Context) error {
	out, err := h.uc.ListVenderSales(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get sales successfully.", out)
}
