package handler

import (
	"net/http"

	"secondhand/internal/domain/model"
	"secondhand/internal/middleware"
	"secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type CartItemRequest struct {
	ProductID string     `json:"productId" validate:"max=64"`
	Quantity  flexNumber `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ProductID string `json:"productId" query:"productId" validate:"max=64"`
}

// /cart/* を登録（buyerのみ）
func (h *CartHandler) RegisterRoutes(e *echo.Echo, authJWT echo.MiddlewareFunc, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(authJWT)
	g.Use(middleware.AccountGuard(userRepo))
	g.Use(middleware.RequireRole(model.RoleBuyer))

	g.GET("/my", h.getCart)
	g.POST("/add", h.addToCart)
	g.DELETE("/remove", h.removeItem)
	g.PATCH("/update", h.updateItem)
	g.DELETE("/clear", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	lines, err := h.uc.Get(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get cart successfully.", lines)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req CartItemRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	item, err := h.uc.Add(c.Request().Context(), middleware.CurrentActor(c), req.ProductID, req.Quantity.input())
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Product added to cart.", item)
}

// productIdはbodyでもqueryでもよい
func (h *CartHandler) removeItem(c echo.Context) error {
	var req RemoveCartItemRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	item, err := h.uc.Remove(c.Request().Context(), middleware.CurrentActor(c), req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Cart item removed successfully.", item)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	var req CartItemRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	res, err := h.uc.SetQuantity(c.Request().Context(), middleware.CurrentActor(c), req.ProductID, req.Quantity.input())
	if err != nil {
		return writeError(c, err)
	}
	if res.Removed {
		return writeOK(c, http.StatusOK, "Cart item removed because quantity <= 0.", res.Item)
	}
	return writeOK(c, http.StatusOK, "Cart item updated successfully.", res.Item)
}

func (h *CartHandler) clear(c echo.Context) error {
	n, err := h.uc.Clear(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Cart cleared successfully.", map[string]int64{"deletedCount": n})
}
