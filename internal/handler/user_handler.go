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

// /userのHTTP
type UserHandler struct {
	uc *usecase.UserUsecase
}

// DI
func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

type RegisterRequest struct {
	Username    string   `json:"username" validate:"max=100"`
	Email       string   `json:"email" validate:"omitempty,email,max=255"`
	Password    string   `json:"password" validate:"max=72"`
	Type        string   `json:"type" validate:"max=20"`
	Address     string   `json:"address" validate:"max=500"`
	IsAvailable flexBool `json:"isAvailable"`
}

func (r *RegisterRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"max=255"`
	Password string `json:"password" validate:"max=72"`
}

type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=100"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
}

// /user/* を登録。register/loginだけ認証なし（レート制限あり）
func (h *UserHandler) RegisterRoutes(e *echo.Echo, authJWT echo.MiddlewareFunc, userRepo repository.UserRepository, limiter echo.MiddlewareFunc) {
	g := e.Group("/user")

	g.POST("/register", h.register, limiter)
	g.POST("/login", h.login, limiter)

	authed := g.Group("", authJWT, middleware.AccountGuard(userRepo))
	authed.GET("/me", h.me)
	authed.PUT("/update", h.update)

	admin := authed.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/all", h.all)
	admin.PATCH("/:id/disable", h.disable)
	admin.PATCH("/:id/enable", h.enable)
	admin.DELETE("/:id", h.delete)
}

func (h *UserHandler) register(c echo.Context) error {
	var req RegisterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Type,
		Address:     req.Address,
		IsAvailable: req.IsAvailable.ptr(),
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, http.StatusCreated, "User created successfully.", user)
}

func (h *UserHandler) login(c echo.Context) error {
	var req LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, http.StatusOK, "Login successful.", out)
}

func (h *UserHandler) me(c echo.Context) error {
	user, err := h.uc.Me(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get user successfully.", user)
}

func (h *UserHandler) update(c echo.Context) error {
	var req UpdateUserRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.uc.UpdateSelf(c.Request().Context(), middleware.CurrentActor(c), usecase.UpdateUserInput{
		Username: req.Username,
		Address:  req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}

	return writeOK(c, http.StatusOK, "User updated successfully.", user)
}

func (h *UserHandler) all(c echo.Context) error {
	users, err := h.uc.ListAll(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get all users successfully.", users)
}

func (h *UserHandler) disable(c echo.Context) error {
	user, err := h.uc.Disable(c.Request().Context(), middleware.CurrentActor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "User disabled successfully.", user)
}

func (h *UserHandler) enable(c echo.Context) error {
	user, err := h.uc.Enable(c.Request().Context(), middleware.CurrentActor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "User enabled successfully.", user)
}

func (h *UserHandler) delete(c echo.Context) error {
	user, err := h.uc.Delete(c.Request().Context(), middleware.CurrentActor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "User deleted successfully.", user)
}
