// Package server provides the HTTP inspector for a live recording session.
package server

import (
	"log/slog"

	internal "github.com/SmitUplenchwar2687/Rewind/internal/server"
)

type (
	Server       = internal.Server
	Session      = internal.Session
	Option       = internal.Option
	Hub          = internal.Hub
	StatsMessage = internal.StatsMessage
)

const DashboardHTML = internal.DashboardHTML

var (
	WithLogger            = internal.WithLogger
	WithClock             = internal.WithClock
	WithBroadcastInterval = internal.WithBroadcastInterval
	WithAllowedOrigins    = internal.WithAllowedOrigins
	WithExportRateLimit   = internal.WithExportRateLimit
)

// New creates an inspector for sess listening on addr.
func New(addr string, sess Session, opts ...Option) *Server {
	return internal.New(addr, sess, opts...)
}

// NewHub creates a WebSocket hub with no clients.
func NewHub(logger *slog.Logger) *Hub { return internal.NewHub(logger) }
