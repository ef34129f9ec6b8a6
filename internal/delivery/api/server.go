package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"bazaar/config"
	"bazaar/internal/delivery"
	apimiddleware "bazaar/internal/delivery/api/middleware"
	"bazaar/internal/delivery/api/router"
	"bazaar/internal/delivery/api/validator"
	"bazaar/internal/delivery/middleware"
	"bazaar/internal/domain/lifecycle"
	"bazaar/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/net/http2"
)

type apiServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// ServerParams holds dependencies for HTTP server, injected by Fx.
type ServerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Logger       *slog.Logger
	RouterParams router.RouterParams
}

// NewServer builds the bazaar API and registers its shutdown hook.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	e := newEcho(params.Cfg, params.Logger)
	router.NewRouter(params.RouterParams).RegisterRoutes(e)

	srv := &apiServer{
		cfg:    params.Cfg,
		logger: params.Logger,
		server: e,
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// newEcho configures the transport without routes. The middleware order is
// significant: the request ID must exist before anything logs.
func newEcho(cfg *config.Config, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	timeouts := cfg.HTTP.Timeouts
	e.Server.ReadTimeout = timeouts.ReadTimeout
	e.Server.ReadHeaderTimeout = timeouts.ReadHeaderTimeout
	e.Server.WriteTimeout = timeouts.WriteTimeout
	e.Server.IdleTimeout = timeouts.IdleTimeout

	e.Use(
		echomiddleware.Recover(),
		middleware.NewRequestIDMiddleware(logger).Process,
		middleware.NewLoggerMiddleware(logger, cfg).Handle,
		echomiddleware.Secure(),
		corsMiddleware(cfg.HTTP.AllowOrigins),
		echomiddleware.BodyLimit(cfg.HTTP.MaxRequestBodySize),
	)

	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError
	e.Validator = validator.New()

	return e
}

// corsMiddleware lets configured origins send the session cookie. Without
// origins any site may call the API, but only with a bearer token.
func corsMiddleware(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		return echomiddleware.CORS()
	}

	return echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: true,
	})
}

func (s *apiServer) Serve(_ context.Context) error {
	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))

	attrs := []any{
		slog.String("addr", addr),
		slog.Bool("secure_cookies", s.cfg.IsProduction()),
		slog.Any("cors_origins", s.cfg.HTTP.AllowOrigins),
	}
	if s.cfg.Storage != nil {
		attrs = append(attrs, slog.String("storage_driver", s.cfg.Storage.Driver))
	}
	s.logger.Info("Bazaar API listening", attrs...)

	h2s := &http2.Server{IdleTimeout: s.cfg.HTTP.Timeouts.IdleTimeout}
	if err := s.server.StartH2CServer(addr, h2s); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *apiServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Draining Bazaar API connections")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
