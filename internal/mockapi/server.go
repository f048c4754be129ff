package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/customers/internal/api"
	"github.com/muurk/customers/internal/discovery"
	"github.com/muurk/customers/internal/feed"
	"github.com/muurk/customers/internal/logging"
	"github.com/muurk/customers/internal/version"
)

// DefaultAddr matches the client's default API URL
const DefaultAddr = ":3000"

const shutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Addr      string
	DBPath    string        // SQLite file; empty keeps customers in memory
	Seed      bool          // load SeedCustomers into an empty repository
	Latency   time.Duration // added before every API response
	Advertise bool          // announce the server over mDNS
	Name      string        // mDNS instance name
}

// Server is the mock customers backend
type Server struct {
	config     Config
	repo       Repository
	hub        *feed.Hub
	httpServer *http.Server
	listener   net.Listener
}

// New opens the repository and builds the HTTP handler
func New(config Config) (*Server, error) {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if config.Name == "" {
		host, _ := os.Hostname()
		config.Name = "customers-mock on " + host
	}

	var repo Repository
	if config.DBPath != "" {
		sqliteRepo, err := OpenSQLite(config.DBPath)
		if err != nil {
			return nil, err
		}
		repo = sqliteRepo
	} else {
		repo = NewMemoryRepository()
	}

	if config.Seed {
		if err := Seed(context.Background(), repo, SeedCustomers); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("seed customers: %w", err)
		}
	}

	hub := feed.NewHub()
	return &Server{
		config: config,
		repo:   repo,
		hub:    hub,
		httpServer: &http.Server{
			Handler:           NewRouter(repo, hub, config.Latency),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the configured address. Serve calls it when needed.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound address, nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve handles requests until ctx ends, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	logging.Info("Starting mock customers API",
		zap.String("addr", s.listener.Addr().String()),
		zap.String("db", s.config.DBPath),
		zap.Duration("latency", s.config.Latency),
		zap.String("version", version.Version),
	)

	if s.config.Advertise {
		go s.advertise(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Start serves until SIGINT or SIGTERM
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Shutdown stops accepting requests, disconnects feed clients and closes
// the repository
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		_ = s.httpServer.Close()
	}

	if cerr := s.repo.Close(); cerr != nil {
		logging.Error("Error closing repository", zap.Error(cerr))
		if err == nil {
			err = cerr
		}
	}

	logging.Sync()
	return err
}

func (s *Server) advertise(ctx context.Context) {
	tcpAddr, ok := s.listener.Addr().(*net.TCPAddr)
	if !ok {
		return
	}
	meta := map[string]string{
		"path":    api.CustomersPath,
		"version": version.Version,
	}
	if err := discovery.Advertise(ctx, s.config.Name, tcpAddr.Port, meta); err != nil {
		logging.Warn("mDNS advertisement failed", zap.Error(err))
	}
}
