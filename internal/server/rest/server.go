package rest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AndreyChufelin/kbpanel/internal/logger"
	"github.com/AndreyChufelin/kbpanel/internal/markdown"
	"github.com/AndreyChufelin/kbpanel/internal/router"
	"github.com/AndreyChufelin/kbpanel/internal/toast"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const version = "1.0.0"

type Server struct {
	addr         string
	idleTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *logger.Logger
	states       *router.Table
	markdown     *markdown.Renderer
	toasts       toast.Config
	staticPrefix string
	staticDir    string
	rateLimit    int

	mu   sync.Mutex
	echo *echo.Echo
}

type Option func(*Server)

// WithStatic serves files from dir under the content URL prefix.
func WithStatic(prefix, dir string) Option {
	return func(s *Server) {
		s.staticPrefix = prefix
		s.staticDir = dir
	}
}

// WithRateLimit limits requests per second per client IP.
func WithRateLimit(limit int) Option {
	return func(s *Server) {
		s.rateLimit = limit
	}
}

func WithTimeouts(idle, read, write time.Duration) Option {
	return func(s *Server) {
		s.idleTimeout = idle
		s.readTimeout = read
		s.writeTimeout = write
	}
}

type envelope map[string]interface{}

func NewServer(
	host, port string,
	log *logger.Logger,
	states *router.Table,
	md *markdown.Renderer,
	toasts toast.Config,
	opts ...Option,
) *Server {
	s := &Server{
		addr:     net.JoinHostPort(host, port),
		logger:   log,
		states:   states,
		markdown: md,
		toasts:   toasts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the echo instance with every route registered.
func (s *Server) Handler() (*echo.Echo, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator

	e.Use(middleware.BodyLimit("1M"))
	if s.rateLimit > 0 {
		store := middleware.NewRateLimiterMemoryStore(rate.Limit(s.rateLimit))
		e.Use(middleware.RateLimiter(store))
	}

	e.GET("/v1/healthcheck", s.healthcheckHandler)
	e.GET("/v1/states", s.listStatesHandler)
	e.GET("/v1/states/resolve", s.resolveStateHandler)
	e.GET("/v1/toast-config", s.toastConfigHandler)
	e.POST("/v1/toasts/render", s.renderToastHandler)
	e.POST("/v1/markdown", s.renderMarkdownHandler)

	if s.staticDir != "" {
		e.Static(s.staticPrefix, s.staticDir)
	}

	e.GET("/", s.shellHandler)
	e.GET("/login", s.shellHandler)
	e.GET("/panel", s.shellHandler)
	e.GET("/panel/*", s.shellHandler)

	return e, nil
}

func (s *Server) Start() error {
	e, err := s.Handler()
	if err != nil {
		return err
	}
	e.Server.IdleTimeout = s.idleTimeout
	e.Server.ReadTimeout = s.readTimeout
	e.Server.WriteTimeout = s.writeTimeout
	s.mu.Lock()
	s.echo = e
	s.mu.Unlock()

	s.logger.Info("starting panel server", "addr", s.addr)
	err = e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	e := s.echo
	s.mu.Unlock()
	if e == nil {
		return nil
	}
	return e.Shutdown(ctx)
}

func (s *Server) healthcheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": "development",
			"version":     version,
		},
	})
}
