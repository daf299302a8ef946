// Package handlers implements the REST endpoint handlers for the stubns
// admin API.
//
// Endpoints:
//   - GET /api/v1/health  - health check
//   - GET /api/v1/stats   - runtime and responder statistics
//   - GET /api/v1/entries - loaded entries, in file order
//   - GET /api/v1/queries - recent logged queries (query log must be on)
//
// All endpoints except /health honor the optional X-API-Key header
// authentication configured in api.api_key.
package handlers

import (
	"log/slog"
	"time"

	"github.com/jroosing/stubns/internal/config"
	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/querylog"
	"github.com/jroosing/stubns/internal/responder"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	logger    *slog.Logger
	startTime time.Time

	file    *datafile.File
	stats   *responder.Stats
	queries *querylog.Store
}

// New creates a Handler over the server's read-only runtime state.
// file and stats must be non-nil; queries may be nil when the query log
// is disabled.
func New(cfg *config.Config, logger *slog.Logger, file *datafile.File, stats *responder.Stats, queries *querylog.Store) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
		file:      file,
		stats:     stats,
		queries:   queries,
	}
}
