// Package debugserver serves a live recording session to external tools
// over a Unix socket or TCP, and fetches it back.
package debugserver

import (
	"context"

	internal "github.com/SmitUplenchwar2687/Rewind/internal/debugserver"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Server answers every connection with the current export of its source.
type Server = internal.Server

// Option configures a Server.
type Option = internal.Option

// Source provides the document a server hands out.
type Source = internal.Source

// Address identifies where a debug server listens.
type Address = internal.Address

// AddressKind tells how an Address was specified.
type AddressKind = internal.AddressKind

// Client fetches documents from debug servers.
type Client = internal.Client

// Framing selects how a document is delimited on the wire.
type Framing = internal.Framing

// TransportError reports a socket-level failure.
type TransportError = internal.TransportError

const (
	AddressName = internal.AddressName
	AddressPath = internal.AddressPath
	AddressTCP  = internal.AddressTCP
)

const (
	FramingNewline = internal.FramingNewline
	FramingLength  = internal.FramingLength
)

// New creates a server for source on addr.
func New(addr Address, source Source, opts ...Option) *Server {
	return internal.New(addr, source, opts...)
}

// NameAddress derives a socket path from an application name.
func NameAddress(name string) Address { return internal.NameAddress(name) }

func PathAddress(path string) Address { return internal.PathAddress(path) }

func TCPAddress(host string, port int) Address { return internal.TCPAddress(host, port) }

// ParseAddress accepts "unix:///path", "tcp://host:port", a bare
// "host:port", a filesystem path, or an application name.
func ParseAddress(s string) (Address, error) { return internal.ParseAddress(s) }

// SocketPath returns the socket path derived from an application name.
func SocketPath(name string) string { return internal.SocketPath(name) }

// Fetch reads one document from addr with newline framing.
func Fetch(ctx context.Context, addr Address) (recording.Export, recording.Warnings, error) {
	return internal.Fetch(ctx, addr)
}

var (
	WithLogger        = internal.WithLogger
	WithErrorHandler  = internal.WithErrorHandler
	WithFraming       = internal.WithFraming
	WithAcceptTimeout = internal.WithAcceptTimeout
	WithWriteTimeout  = internal.WithWriteTimeout
)
