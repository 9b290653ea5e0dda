// Package server exposes the bot's liveness and status endpoints.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aoe2league/recbot/internal/version"
)

// statusCounter reports the ledger's stored counts for /status.
type statusCounter interface {
	CountEntries(ctx context.Context) (int, error)
	CountReplays(ctx context.Context) (int, error)
}

type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer builds the HTTP server. counter may be nil, in which case
// /status omits the counts.
func NewServer(addr string, counter statusCounter) *Server {
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.HEAD("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/status", func(c echo.Context) error {
		body := map[string]any{
			"status":  "ok",
			"version": version.Version,
		}
		if counter != nil {
			if replays, err := counter.CountReplays(c.Request().Context()); err == nil {
				body["replays"] = replays
			}
			if entries, err := counter.CountEntries(c.Request().Context()); err == nil {
				body["results"] = entries
			}
		}
		return c.JSON(http.StatusOK, body)
	})

	return &Server{echo: e, addr: addr}
}

func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
