package handler

import (
	"errors"
	"net/http"
	"strings"

	"secondhand/internal/domain/model"
	"secondhand/internal/middleware"
	"secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /productのHTTP
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

type UpdateProductRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Price       flexNumber `json:"price"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	IsOnSale    flexBool   `json:"isOnSale"`
}

type SetOnSaleRequest struct {
	IsOnSale flexBool `json:"isOnSale"`
}

// 公開の一覧・詳細と、venderの出品管理
func (h *ProductHandler) RegisterRoutes(e *echo.Echo, authJWT echo.MiddlewareFunc, userRepo repository.UserRepository) {
	g := e.Group("/product")

	g.GET("/all", h.list)
	g.GET("/detail/:id", h.detail)

	auth := []echo.MiddlewareFunc{authJWT, middleware.AccountGuard(userRepo)}
	vender := append(auth[:len(auth):len(auth)], middleware.RequireRole(model.RoleVender))
	venderOrAdmin := append(auth[:len(auth):len(auth)], middleware.RequireRole(model.RoleVender, model.RoleAdmin))

	g.GET("/my", h.my, vender...)
	g.POST("/create", h.create, vender...)
	g.PUT("/:id", h.update, vender...)
	g.PATCH("/:id/onsale", h.setOnSale, vender...)
	g.DELETE("/:id", h.delete, venderOrAdmin...)
}

func (h *ProductHandler) list(c echo.Context) error {
	var onSale *bool
	if v := strings.TrimSpace(c.QueryParam("onSale")); v != "" {
		switch strings.ToLower(v) {
		case "true":
			t := true
			onSale = &t
		case "false":
			f := false
			onSale = &f
		default:
			return writeBadRequest(c, "onSale must be true or false.")
		}
	}

	products, err := h.uc.ListAll(c.Request().Context(), onSale)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get all products successfully.", products)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetByID(c.Request().Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get product successfully.", p)
}

func (h *ProductHandler) my(c echo.Context) error {
	products, err := h.uc.ListMine(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get my products successfully.", products)
}

// multipart/form-data（画像はimageフィールド）
func (h *ProductHandler) create(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return writeBadRequest(c, "Invalid request body.")
	}

	in := usecase.CreateProductInput{
		Name:        form.Get("name"),
		Price:       formNumber(form.Get("price")),
		Description: form.Get("description"),
	}
	if vs, ok := form["isOnSale"]; ok && len(vs) > 0 {
		b := parseBool(vs[0])
		in.IsOnSale = &b
	}

	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return writeError(c, err)
		}
		defer f.Close()
		in.Image = &usecase.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		//画像なしはusecaseが判定する
	default:
		return writeBadRequest(c, "Invalid request body.")
	}

	p, err := h.uc.Create(c.Request().Context(), middleware.CurrentActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusCreated, "Product created successfully.", p)
}

func (h *ProductHandler) update(c echo.Context) error {
	var req UpdateProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	p, err := h.uc.Update(c.Request().Context(), middleware.CurrentActor(c), strings.TrimSpace(c.Param("id")), usecase.UpdateProductInput{
		Name:        req.Name,
		Price:       req.Price.input(),
		Description: req.Description,
		IsOnSale:    req.IsOnSale.ptr(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Product updated successfully.", p)
}

func (h *ProductHandler) setOnSale(c echo.Context) error {
	var req SetOnSaleRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	p, err := h.uc.SetAvailability(c.Request().Context(), middleware.CurrentActor(c), strings.TrimSpace(c.Param("id")), req.IsOnSale.ptr())
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Product availability updated successfully.", p)
}

func (h *ProductHandler) delete(c echo.Context) error {
	p, err := h.uc.Delete(c.Request().Context(), middleware.CurrentActor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Product deleted successfully.", p)
}
