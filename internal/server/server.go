// Package server hosts the benchmark pages and the postback endpoint.
// Benchmark assets are served statically; a page under test reports its
// measurements by POSTing a form-encoded JSON array to /results, which is
// handed to the shared result channel.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/webbench/internal/harness"
	mw "github.com/DjordjeVuckovic/webbench/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const GracefulShutdownTimeout = 10 * time.Second

type Config struct {
	Listen    string
	AssetsDir string
}

type Server struct {
	Echo *echo.Echo

	cfg     Config
	channel *harness.ResultChannel
}

func New(channel *harness.ResultChannel, cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Echo:    e,
		cfg:     cfg,
		channel: channel,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.Echo.Use(mw.Logger())
	s.Echo.Use(middleware.Recover())
}

func (s *Server) setupRoutes() {
	s.Echo.POST("/results", s.handlePostback)
	s.Echo.Static("/", s.cfg.AssetsDir)
}

func (s *Server) handlePostback(c echo.Context) error {
	payload := c.FormValue("results")
	if payload == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing results field")
	}
	if err := s.channel.Deliver(c.Request().Header, []byte(payload)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// Start binds the listener and serves in the background, so the caller can
// drive the benchmark plan while the server handles postbacks.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	}
	s.Echo.Listener = ln

	go func() {
		if err := s.Echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("benchmark server stopped", "error", err)
		}
	}()
	return nil
}

// BaseURL is the prefix benchmark page URLs are resolved against. Only
// valid after Start. A wildcard listen address maps to localhost so the
// URL stays navigable by a browser.
func (s *Server) BaseURL() string {
	addr := s.Echo.Listener.Addr().(*net.TCPAddr)
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, strconv.Itoa(addr.Port)))
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := s.Echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown benchmark server: %w", err)
	}
	return nil
}
