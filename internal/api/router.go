package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/humanityclub/hco-backend/docs"
	"github.com/humanityclub/hco-backend/internal/api/handler"
	"github.com/humanityclub/hco-backend/internal/api/middleware"
	"github.com/humanityclub/hco-backend/internal/core/domain"
	"github.com/humanityclub/hco-backend/internal/core/ports"
)

const defaultBodyLimit = "1M"

// Options carries the dependencies and transport settings of the router.
type Options struct {
	AuthService ports.AuthService
	Logger      zerolog.Logger

	// Production enables secure cookies, hides error detail and the swagger UI.
	Production   bool
	CORSOrigins  []string
	CookieDomain string
	BodyLimit    string
	Version      string

	// Checks are pinged by the readiness probe.
	Checks []handler.DependencyCheck

	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger, !opts.Production)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "hco",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(opts.AuthService, handler.CookiePolicy{
		Secure: opts.Production,
		Domain: opts.CookieDomain,
	})
	requireAuth := middleware.Auth(opts.AuthService)
	optionalAuth := middleware.OptionalAuth(opts.AuthService)

	e.GET("/", handler.NewIndexHandler(opts.Version).Index)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	if !opts.Production {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	v1 := e.Group("/api/v1")

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(opts.Checks...)
	v1.GET("/health", healthHandler.Liveness)
	v1.GET("/health/ready", healthHandler.Readiness)

	// --- Admin session routes ---
	admin := v1.Group("/admin")
	admin.POST("/login", authHandler.Login)
	admin.POST("/refresh", authHandler.Refresh)
	admin.POST("/register", authHandler.Register, optionalAuth)
	admin.POST("/logout", authHandler.Logout, requireAuth)
	admin.GET("/me", authHandler.Me, requireAuth)
	admin.GET("", authHandler.List, requireAuth, middleware.RBAC(domain.RoleSuperAdmin))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
