package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// 1リクエスト1行のアクセスログ
// 5xxはhandlerが残した原因(error_cause)も出す
func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			status := res.Status

			fields := logrus.Fields{
				"method":      req.Method,
				"path":        c.Path(),
				"url":         req.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   c.RealIP(),
				"request_id":  res.Header().Get(echo.HeaderXRequestID),
			}
			if uid, ok := c.Get(CtxUserIDKey).(string); ok && uid != "" {
				fields["user_id"] = uid
			}
			entry := log.WithFields(fields)

			cause, _ := c.Get(CtxErrorKey).(error)
			if cause == nil {
				cause = err
			}

			switch {
			case status >= 500:
				entry.WithError(cause).Error("request completed")
			case status >= 400:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
			return nil
		}
	}
}
