// Package server exposes the decoder over HTTP for browser and script
// collaborators: submit a hash, poll the latest result, scrape metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AvaProtocol/txdecode/core/config"
	"github.com/AvaProtocol/txdecode/core/pipeline"
	"github.com/AvaProtocol/txdecode/pkg/logger"
	"github.com/AvaProtocol/txdecode/version"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	config     *config.Config
	dispatcher *pipeline.Dispatcher
	gatherer   prometheus.Gatherer
	logger     logger.Logger

	echo *echo.Echo
}

// New builds the echo instance and registers every route. gatherer may be
// nil, in which case /metrics is not served.
func New(cfg *config.Config, dispatcher *pipeline.Dispatcher, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	s := &Server{
		config:     cfg,
		dispatcher: dispatcher,
		gatherer:   gatherer,
		logger:     logger.EnsureLogger(log),
	}

	s.initSentry()
	s.echo = s.routes()
	return s
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address until ctx is cancelled. It returns
// immediately when no bind address is configured.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.HttpBindAddress
	if addr == "" {
		s.logger.Info("HTTP server disabled: no http_bind_address configured")
		return nil
	}

	errc := make(chan error, 1)
	s.logger.Info("HTTP server listening", "address", addr)
	goSafe(func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	})

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	defer sentryFlushSafely(2 * time.Second)
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) initSentry() {
	if s.config.SentryDsn == "" {
		return
	}

	env := "production"
	if s.config.Environment == sdklogging.Development {
		env = "development"
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              s.config.SentryDsn,
		ServerName:       s.config.ServerName,
		Environment:      env,
		Release:          fmt.Sprintf("txdecode@%s+%s", version.Get(), version.Commit()),
		AttachStacktrace: true,
		TracesSampleRate: 1.0,
	}); err != nil {
		s.logger.Errorf("Sentry initialization failed: %v", err)
	}
}

// requestValidator plugs go-playground/validator into echo's Bind/Validate.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
