package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/focoalerta/reports-api/docs"
	"github.com/focoalerta/reports-api/internal/api/handler"
	"github.com/focoalerta/reports-api/internal/api/middleware"
	"github.com/focoalerta/reports-api/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Auth    ports.AuthService
	Gate    ports.SessionGate
	Reports ports.ReportService

	// Checks are pinged by the readiness probe.
	Checks []handler.DependencyCheck

	Cookie        handler.CookieConfig
	AuthRateLimit string
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))

	authLimit, err := middleware.RateLimit(deps.AuthRateLimit)
	if err != nil {
		return nil, fmt.Errorf("auth rate limit: %w", err)
	}
	requireSession := middleware.Session(deps.Gate)

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	reportHandler := handler.NewReportHandler(deps.Reports)
	geocodeHandler := handler.NewGeocodeHandler(deps.Reports)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/register", authHandler.Register, authLimit)
	api.POST("/login", authHandler.Login, authLimit)
	api.POST("/logout", authHandler.Logout, requireSession)
	api.GET("/user", authHandler.Me, requireSession)

	// --- Report routes ---
	api.GET("/reports", reportHandler.ListAll, requireSession)
	api.POST("/reports", reportHandler.Create, requireSession)
	api.GET("/reports/:id", reportHandler.Get, requireSession)
	api.PATCH("/reports/:id/status", reportHandler.UpdateStatus, requireSession)
	api.GET("/reports/:id/history", reportHandler.History, requireSession)
	api.GET("/user/reports", reportHandler.ListMine, requireSession)
	api.GET("/geocode", geocodeHandler.Resolve, requireSession)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Checks...).Readiness)

	// --- Operations ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// requestLogger emits one zerolog line per request.
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
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			userID, _ := c.Get(middleware.UserIDKey).(int64)
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Int64("user_id", userID).
				Msg("request")
			return nil
		},
	})
}
