package handler

import (
	"net/http"
	"strings"
	"time"

	"secondhand/internal/domain/model"
	"secondhand/internal/middleware"
	"secondhand/internal/repository"
	"secondhand/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	uc *usecase.AuditUsecase
}

func NewAdminHandler(uc *usecase.AuditUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, authJWT echo.MiddlewareFunc, userRepo repository.UserRepository) {
	// /admin 配下は全部「JWT必須 + アカウント確認 + admin限定」
	admin := e.Group(
		"/admin",
		authJWT,
		middleware.AccountGuard(userRepo),
		middleware.RequireRole(model.RoleAdmin),
	)

	admin.GET("/audit-logs", h.auditLogs)
}

// ?actorUserId=&action=&resourceType=&resourceId=&from=&to=&limit=&offset=
func (h *AdminHandler) auditLogs(c echo.Context) error {
	var in usecase.AuditListInput
	var from, to string
	if err := echo.QueryParamsBinder(c).
		String("actorUserId", &in.ActorUserID).
		String("action", &in.Action).
		String("resourceType", &in.ResourceType).
		String("resourceId", &in.ResourceID).
		String("from", &from).
		String("to", &to).
		Int("limit", &in.Limit).
		Int("offset", &in.Offset).
		BindError(); err != nil {
		return writeBadRequest(c, "limit and offset must be integers.")
	}

	var err error
	if in.From, err = parseTimeParam(from); err != nil {
		return writeBadRequest(c, "from must be an RFC3339 timestamp.")
	}
	if in.To, err = parseTimeParam(to); err != nil {
		return writeBadRequest(c, "to must be an RFC3339 timestamp.")
	}

	logs, err := h.uc.List(c.Request().Context(), middleware.CurrentActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return writeOK(c, http.StatusOK, "Get audit logs successfully.", logs)
}

func parseTimeParam(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
