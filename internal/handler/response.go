package handler

import (
	"net/http"

	"secondhand/internal/middleware"
	"secondhand/internal/usecase"
	"secondhand/internal/validator"

	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeOK(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, SuccessResponse{Message: msg, Data: data})
}

// AppErrorをHTTPに変換する。それ以外は500
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		if ae.Kind == usecase.KindInternal {
			c.Set(middleware.CtxErrorKey, ae.Err)
		}
		return c.JSON(ae.Kind.Status(), ErrorResponse{Error: ae.Message, Code: ae.Kind.Code()})
	}

	//500
	c.Set(middleware.CtxErrorKey, err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error.", Code: usecase.KindInternal.Code()})
}

func writeBadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: usecase.KindValidation.Code()})
}

// Bind + Validate。失敗したら400を書いてfalseを返す
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, writeBadRequest(c, "Invalid request body.")
	}
	if n, ok := req.(interface{ normalize() }); ok {
		n.normalize()
	}
	if err := c.Validate(req); err != nil {
		return false, writeBadRequest(c, validator.Message(err))
	}
	return true, nil
}
