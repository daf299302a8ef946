// Package server implements the UDP and TCP listeners and the process
// lifecycle around the responder pipeline.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jroosing/stubns/internal/api"
	"github.com/jroosing/stubns/internal/config"
	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/querylog"
	"github.com/jroosing/stubns/internal/responder"
)

// stopTimeout bounds graceful shutdown of the TCP and API servers.
const stopTimeout = 5 * time.Second

// Runner orchestrates responder startup, serving, and shutdown.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a new server runner with the given logger.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run serves the parsed data file until SIGINT or SIGTERM.
func (r *Runner) Run(cfg *config.Config, file *datafile.File) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return r.RunWithContext(ctx, cfg, file)
}

// RunWithContext serves the parsed data file and blocks until ctx is
// cancelled or a listener fails.
//
// Lifecycle:
//  1. Open the query log, when enabled
//  2. Build the responder over the read-only entry list
//  3. Start the UDP and TCP servers on the shared port, plus the
//     optional admin API
//  4. Wait for shutdown or a listener error
//  5. Gracefully stop everything
func (r *Runner) RunWithContext(ctx context.Context, cfg *config.Config, file *datafile.File) error {
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	stats := responder.NewStats()

	var queries *querylog.Store
	if cfg.QueryLog.Enabled {
		var err error
		queries, err = querylog.Open(cfg.QueryLog.Path)
		if err != nil {
			return err
		}
		defer queries.Close()
		r.logger.Info("query log enabled", "path", cfg.QueryLog.Path)
	}

	resp := &responder.Responder{
		Logger:  r.logger,
		Entries: file.Entries,
		Stats:   stats,
		Queries: queries,
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	r.logger.Info("listening",
		"addr", addr,
		"udp", true,
		"tcp", cfg.Server.EnableTCP,
		"datafile", file.Path,
		"entries", len(file.Entries),
	)

	udp := &UDPServer{Logger: r.logger, Responder: resp}
	var tcp *TCPServer
	if cfg.Server.EnableTCP {
		tcp = &TCPServer{Logger: r.logger, Responder: resp}
	}

	var apiSrv *api.Server
	if cfg.API.Enabled {
		apiSrv = api.New(cfg, r.logger, api.Runtime{
			File:    file,
			Stats:   stats,
			Queries: queries,
		})
		r.logger.Info("admin api enabled", "addr", apiSrv.Addr())
		go func() {
			if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				r.logger.Error("admin api failed", "err", err)
			}
		}()
	}

	errCh := make(chan error, 2)
	go func() { errCh <- udp.Run(ctx, addr) }()
	if tcp != nil {
		go func() { errCh <- tcp.Run(ctx, addr) }()
	}

	var runErr error
	select {
	case <-ctx.Done():
		// shutdown requested via signal
	case err := <-errCh:
		if err != nil {
			runErr = err
		}
	}
	cancelRun()

	_ = udp.Stop()
	if tcp != nil {
		_ = tcp.Stop(stopTimeout)
	}
	if apiSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		_ = apiSrv.Shutdown(shutdownCtx)
		cancel()
	}
	return runErr
}
