// Package api provides the optional REST admin API for stubns. It
// exposes health, statistics, the loaded entry list, and the query log
// via a Gin-based HTTP server, so test harnesses can inspect the
// responder without parsing its log output.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/stubns/internal/api/handlers"
	"github.com/jroosing/stubns/internal/api/middleware"
	"github.com/jroosing/stubns/internal/config"
	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/querylog"
	"github.com/jroosing/stubns/internal/responder"
)

// Runtime bundles the server state the API reads. Everything here is
// read-only or internally synchronized.
type Runtime struct {
	File    *datafile.File
	Stats   *responder.Stats
	Queries *querylog.Store // nil when the query log is disabled
}

// Server is the admin REST API server.
//
// Security note: the API binds to localhost by default; do not expose
// it to untrusted networks without an API key.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New builds the API server. It does not start listening.
func New(cfg *config.Config, logger *slog.Logger, rt Runtime) *Server {
	if cfg == nil {
		panic("api.New: cfg is nil")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, logger, rt.File, rt.Stats, rt.Queries)
	RegisterRoutes(engine, h, cfg)

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{cfg: cfg, logger: logger, engine: engine, httpServer: httpServer}
}

func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
