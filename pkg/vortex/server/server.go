// Package server owns the listener: accepting connections, tuning their
// sockets, handing each to an http11.Connection on its own goroutine, and
// coordinating graceful shutdown across every connection in flight.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/vortex/pkg/vortex/container"
	"github.com/yourusername/vortex/pkg/vortex/http11"
	"github.com/yourusername/vortex/pkg/vortex/logging"
	"github.com/yourusername/vortex/pkg/vortex/pipeline"
	"github.com/yourusername/vortex/pkg/vortex/socket"
)

// Config configures a Server. An empty Addr falls back to ":8080"; every
// other field is passed to each connection as set, zero values included.
type Config struct {
	// Addr is the "host:port" or ":port" address to listen on.
	Addr string

	KeepAliveTimeout time.Duration
	HeaderTimeout    time.Duration
	MaxRequests      int
	ReadBufferSize   int
	WriteBufferSize  int
	ServerName       string
	MaxChunkSize     uint64
	MaxBodySize      uint64

	Socket socket.Config
}

// DefaultConfig returns a Config suitable for most HTTP workloads.
func DefaultConfig() Config {
	conn := http11.DefaultConnectionConfig()
	return Config{
		Addr:             ":8080",
		KeepAliveTimeout: conn.KeepAliveTimeout,
		HeaderTimeout:    conn.HeaderTimeout,
		MaxRequests:      conn.MaxRequests,
		ReadBufferSize:   conn.ReadBufferSize,
		WriteBufferSize:  conn.WriteBufferSize,
		ServerName:       conn.ServerName,
		MaxChunkSize:     conn.MaxChunkSize,
		MaxBodySize:      conn.MaxBodySize,
		Socket:           socket.DefaultConfig(),
	}
}

func (c Config) connectionConfig() http11.ConnectionConfig {
	return http11.ConnectionConfig{
		KeepAliveTimeout: c.KeepAliveTimeout,
		HeaderTimeout:    c.HeaderTimeout,
		MaxRequests:      c.MaxRequests,
		ReadBufferSize:   c.ReadBufferSize,
		WriteBufferSize:  c.WriteBufferSize,
		ServerName:       c.ServerName,
		MaxChunkSize:     c.MaxChunkSize,
		MaxBodySize:      c.MaxBodySize,
	}
}

// Server listens on one address and serves every accepted connection
// through a shared Pipeline and Container, one goroutine per connection.
type Server struct {
	config   Config
	pipeline *pipeline.Pipeline
	services *container.Container

	listener net.Listener
	group    *errgroup.Group
	cancel   context.CancelFunc

	shuttingDown atomic.Bool
	activeConns  atomic.Int64
}

// New returns a Server dispatching accepted connections through p, with
// handler dependencies resolved against services.
func New(config Config, p *pipeline.Pipeline, services *container.Container) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	return &Server{config: config, pipeline: p, services: services}
}

// ListenAndServe resolves Addr, binds a listener tuned per config.Socket,
// and serves until the context is canceled or Shutdown is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr, err := parseListenAddress(s.config.Addr)
	if err != nil {
		return err
	}

	lc := socket.ListenConfig(s.config.Socket)
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, the listener
// closes, or Shutdown is called. It blocks until every in-flight
// connection's goroutine has returned.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.listener = ln
	group, _ := errgroup.WithContext(ctx)
	s.group = group
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.shuttingDown.Load() {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			logging.Warnf("server: accept: %v", err)
			continue
		}

		if err := socket.Apply(conn, s.config.Socket); err != nil {
			logging.Debugf("server: socket tuning: %v", err)
		}
		s.activeConns.Add(1)
		group.Go(func() error {
			defer s.activeConns.Add(-1)
			c := http11.NewConnection(conn, s.pipeline, s.services, s.config.connectionConfig())
			if err := c.Serve(); err != nil {
				logging.Debugf("server: connection from %s: %v", conn.RemoteAddr(), err)
			}
			return nil
		})
	}

	return group.Wait()
}

// Shutdown stops accepting new connections and waits for in-flight
// connections to finish on their own, up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.shuttingDown.CompareAndSwap(false, true) {
		return nil
	}
	if s.listener != nil {
		s.listener.Close()
	}
	if s.group == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// ActiveConnections reports the number of connections currently being
// served.
func (s *Server) ActiveConnections() int64 {
	return s.activeConns.Load()
}
