package echo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultPort is the port the demo service listens on.
const DefaultPort = 8000

// ServerConfig configures an echo server.
type ServerConfig struct {
	// Address to listen on (e.g., ":8000" or "127.0.0.1:0").
	Address string

	// Logger for operational logging. Default: slog.Default().
	Logger *slog.Logger

	// OnConnect is called when a connection is accepted.
	OnConnect func(id string, remote net.Addr)

	// OnDisconnect is called when a connection ends, with the number of
	// bytes echoed.
	OnDisconnect func(id string, echoed int64)
}

// Server echoes everything it receives.
type Server struct {
	config   ServerConfig
	logger   *slog.Logger
	listener net.Listener

	conns   map[string]net.Conn
	connsMu sync.RWMutex

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewServer creates a stopped server.
func NewServer(config ServerConfig) *Server {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: config,
		logger: logger,
		conns:  make(map[string]net.Conn),
	}
}

// Start listens and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info("echo server listening", "addr", listener.Addr())
	return nil
}

// Stop closes the listener and every connection, then waits for the
// handlers to finish.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}

	err := s.listener.Close()

	s.connsMu.Lock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return err
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// Port returns the TCP port the server listens on, or 0 before Start.
func (s *Server) Port() uint16 {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return uint16(addr.Port)
	}
	return 0
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	id := uuid.NewString()
	s.connsMu.Lock()
	if !s.running.Load() {
		s.connsMu.Unlock()
		conn.Close()
		return
	}
	s.conns[id] = conn
	s.connsMu.Unlock()

	s.logger.Debug("echo connection opened", "conn", id, "remote", conn.RemoteAddr())
	if s.config.OnConnect != nil {
		s.config.OnConnect(id, conn.RemoteAddr())
	}

	n, err := io.Copy(conn, conn)
	if err != nil && s.running.Load() && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("echo connection failed", "conn", id, "error", err)
	}

	s.connsMu.Lock()
	delete(s.conns, id)
	s.connsMu.Unlock()
	conn.Close()

	s.logger.Debug("echo connection closed", "conn", id, "bytes", n)
	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(id, n)
	}
}
