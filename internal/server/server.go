package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"secondhand/internal/config"
	"secondhand/internal/infra/event"
	"secondhand/internal/infra/password"
	infraRepo "secondhand/internal/infra/repository"
	"secondhand/internal/infra/token"
	"secondhand/internal/middleware"
	"secondhand/internal/usecase"
	"secondhand/internal/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultBcryptCost = 12

type Deps struct {
	Config config.Config
	Log    logrus.FieldLogger
	DB     *gorm.DB
	Images usecase.ImageStore
	Events usecase.EventPublisher

	// 省略時はuuid / time.Now / bcrypt(12)
	IDs    usecase.IDGenerator
	Clock  usecase.Clock
	Hasher usecase.PasswordHasher
}

type Server struct {
	cfg   config.Config
	log   logrus.FieldLogger
	echo  *echo.Echo
	users *usecase.UserUsecase
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Repository → Usecase → Handler を組み立てる
func New(d Deps) *Server {
	if d.IDs == nil {
		d.IDs = uuidGenerator{}
	}
	if d.Clock == nil {
		d.Clock = realClock{}
	}
	if d.Hasher == nil {
		d.Hasher = password.NewBcryptHasher(defaultBcryptCost)
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Events == nil {
		d.Events = event.NopPublisher{}
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(d.DB)
	productRepo := infraRepo.NewProductGormRepository(d.DB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(d.DB)
	orderRepo := infraRepo.NewOrderGormRepository(d.DB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(d.DB)
	auditRepo := infraRepo.NewAuditLogGormRepository(d.DB)
	txm := infraRepo.NewTxManagerGorm(d.DB)

	issuer := token.NewJWTIssuer(d.Config.JWTSecret, d.Config.TokenTTL)

	//Usecase生成
	userUC := usecase.NewUserUsecase(userRepo, auditRepo, d.Hasher, issuer, d.IDs, d.Clock, d.Log)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo, d.Images, d.Events, d.IDs, d.Clock, d.Log)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo, d.IDs, d.Clock)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo, productRepo, userRepo, d.Events, d.IDs, d.Clock, d.Log)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{d.Config.FEURL},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	if d.Config.MaxUploadSize != "" {
		e.Use(echomw.BodyLimit(d.Config.MaxUploadSize))
	}

	limiter := middleware.NewRateLimiter(d.Config.AuthRateLimit)

	registerRoutes(e, d.Config, d.Clock, userRepo, limiter.Middleware(), usecases{
		users:    userUC,
		products: productUC,
		carts:    cartUC,
		orders:   orderUC,
		audit:    auditUC,
	})

	return &Server{cfg: d.Config, log: d.Log, echo: e, users: userUC}
}

func (s *Server) Echo() *echo.Echo { return s.echo }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// ADMIN_EMAIL/ADMIN_PASSWORDがあれば管理者を作る（既にあれば何もしない）
func (s *Server) SeedAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}
	created, err := s.users.SeedAdmin(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		s.log.WithField("email", s.cfg.AdminEmail).Info("admin account created")
	}
	return nil
}

// ctxがキャンセルされたらgraceful shutdown
func (s *Server) Start(ctx context.Context) error {
	addr := ":" + s.cfg.Port

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("server started")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down server")
	return s.echo.Shutdown(shutdownCtx)
}

// echoのHTTPError（404/405/413など）も {error, code} で返す
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "Internal server error."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if s, ok := he.Message.(string); ok && status < http.StatusInternalServerError {
			msg = s
		}
	}
	if status >= http.StatusInternalServerError {
		c.Set(middleware.CtxErrorKey, err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, map[string]string{"error": msg, "code": codeForStatus(status)})
	}
	if werr != nil {
		c.Logger().Error(werr)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL"
	}
}
