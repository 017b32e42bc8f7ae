// Package debugserver exposes a live recording session to inspectors. Every
// connection receives the session's export at the moment it was accepted,
// framed as one document, and is then closed.
package debugserver

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

const (
	defaultAcceptTimeout = 250 * time.Millisecond
	defaultWriteTimeout  = 5 * time.Second
)

// Source produces the document served to each connection.
// *recorder.Session satisfies it.
type Source interface {
	Export() recording.Export
}

// Framing selects how a document is delimited on the wire.
type Framing int

const (
	// FramingNewline writes the document followed by '\n'.
	FramingNewline Framing = iota
	// FramingLength writes a 4-byte big-endian length, then the document.
	FramingLength
)

// TransportError reports a failure to bind, accept, dial, read or write.
type TransportError struct {
	Op   string
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("debugserver: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Server serves point-in-time exports of a Source.
type Server struct {
	addr          Address
	source        Source
	logger        *slog.Logger
	onError       func(error)
	framing       Framing
	acceptTimeout time.Duration
	writeTimeout  time.Duration

	mu        sync.Mutex
	ln        net.Listener
	serveDone chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
	conns     sync.WaitGroup
	served    atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithErrorHandler receives every transport error. Errors never reach the
// recording session.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Server) { s.onError = fn }
}

func WithFraming(f Framing) Option {
	return func(s *Server) { s.framing = f }
}

// WithAcceptTimeout bounds each wait for a connection, which is how often
// the accept loop notices cancellation.
func WithAcceptTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.acceptTimeout = d
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// New creates a server for source at addr. Call Listen and Serve, or Start.
func New(addr Address, source Source, opts ...Option) *Server {
	s := &Server{
		addr:          addr,
		source:        source,
		acceptTimeout: defaultAcceptTimeout,
		writeTimeout:  defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Listen binds the address. For Unix sockets the parent directory is
// created and a stale socket file is replaced; a regular file or a live
// socket at the path fails with a *TransportError.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return nil
	}
	if s.closed.Load() {
		return &TransportError{Op: "listen", Addr: s.addr.String(), Err: net.ErrClosed}
	}

	target := s.addr.Target()
	if s.addr.Network() == "unix" {
		if err := prepareSocket(target); err != nil {
			return &TransportError{Op: "listen", Addr: s.addr.String(), Err: err}
		}
	}

	ln, err := net.Listen(s.addr.Network(), target)
	if err != nil {
		return &TransportError{Op: "listen", Addr: s.addr.String(), Err: err}
	}
	s.ln = ln
	s.logger.Info("debug server listening", "addr", ln.Addr().String(), "network", s.addr.Network())
	return nil
}

var (
	errNotSocket  = errors.New("path exists and is not a socket")
	errSocketLive = errors.New("socket is in use by another server")
)

// prepareSocket creates the socket directory and removes a leftover socket
// file at path. Anything else at path, or a socket that still accepts
// connections, is left in place and reported.
func prepareSocket(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return errNotSocket
	}
	if conn, err := net.DialTimeout("unix", path, 100*time.Millisecond); err == nil {
		_ = conn.Close()
		return errSocketLive
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Served returns the number of documents written successfully.
func (s *Server) Served() int64 {
	return s.served.Load()
}

// Serve accepts connections until ctx is done or Close is called. It
// returns nil in both cases. Failures on individual connections are
// reported and do not stop the loop.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	type deadliner interface {
		SetDeadline(time.Time) error
	}

	for {
		if ctx.Err() != nil || s.closed.Load() {
			return nil
		}
		if dl, ok := ln.(deadliner); ok {
			_ = dl.SetDeadline(time.Now().Add(s.acceptTimeout))
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			s.report(&TransportError{Op: "accept", Addr: s.addr.String(), Err: err})
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.acceptTimeout):
			}
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handle(conn)
		}()
	}
}

// Start binds and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	done := make(chan struct{})
	s.mu.Lock()
	s.serveDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := s.Serve(ctx); err != nil {
			s.report(err)
		}
	}()
	return nil
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	remote := s.addr.String()
	if ra := conn.RemoteAddr(); ra != nil && ra.String() != "" {
		remote = ra.String()
	}
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		s.report(&TransportError{Op: "write", Addr: remote, Err: err})
		return
	}

	data, err := recording.Marshal(s.source.Export())
	if err != nil {
		s.report(fmt.Errorf("debugserver: encoding export: %w", err))
		return
	}

	if err := writeFrame(conn, data, s.framing); err != nil {
		s.report(&TransportError{Op: "write", Addr: remote, Err: err})
		return
	}
	s.served.Add(1)
	s.logger.Debug("served recording", "remote", remote, "bytes", len(data))
}

func writeFrame(conn net.Conn, data []byte, framing Framing) error {
	var buf []byte
	switch framing {
	case FramingLength:
		buf = make([]byte, 4, 4+len(data))
		binary.BigEndian.PutUint32(buf, uint32(len(data)))
		buf = append(buf, data...)
	default:
		buf = make([]byte, 0, len(data)+1)
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	_, err := conn.Write(buf)
	return err
}

func (s *Server) report(err error) {
	s.logger.Warn("debug server error", "error", err)
	if s.onError != nil {
		s.onError(err)
	}
}

// Close stops accepting, waits for in-flight connections and removes the
// socket file. It is idempotent.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.mu.Lock()
		ln := s.ln
		done := s.serveDone
		s.mu.Unlock()

		if ln != nil {
			if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
				err = &TransportError{Op: "close", Addr: s.addr.String(), Err: cerr}
			}
		}
		if done != nil {
			<-done
		}
		s.conns.Wait()

		if ln != nil && s.addr.Network() == "unix" {
			if rerr := os.Remove(s.addr.Target()); rerr != nil && !errors.Is(rerr, os.ErrNotExist) && err == nil {
				err = rerr
			}
		}
	})
	return err
}
