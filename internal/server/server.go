package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jarvest/jarvest/common"
	"github.com/jarvest/jarvest/pkg/logger"
)

// Server serves the RPC surface on two transports at once: loopback TCP
// for HTTP clients and a local listener (Unix socket or Windows named
// pipe) for same-host tooling. Both speak the same authenticated HTTP
// handler.
type Server struct {
	log   logger.Logger
	rpc   *RPCServer
	port  int
	local net.Listener
	tcp   *http.Server
	mu    sync.Mutex
}

// NewServer creates a Server around an RPC surface.
func NewServer(l logger.Logger, rpc *RPCServer, port int) *Server {
	return &Server{
		log:  l,
		rpc:  rpc,
		port: port,
	}
}

// Start begins serving and blocks until the context is canceled or a
// listener fails. With an access key configured, both transports serve
// the authenticated handler; without one, only the owner-restricted
// local transport runs, unauthenticated.
func (s *Server) Start(ctx context.Context) error {
	keyless := s.rpc.secret == ""

	s.mu.Lock()
	if !keyless {
		s.tcp = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", common.TCPHost, s.port),
			Handler: s.rpc.Handler(),
		}
	}
	local, err := s.createListener()
	if err != nil {
		if keyless {
			s.mu.Unlock()
			return fmt.Errorf("no access key and no local transport: %w", err)
		}
		s.log.Warning("local transport unavailable: %v", err)
	} else {
		s.local = local
	}
	s.mu.Unlock()

	errCh := make(chan error, 2)
	if s.tcp != nil {
		tcp := s.tcp
		go func() {
			s.log.Info("rpc listening on %s", tcp.Addr)
			if err := tcp.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
				return
			}
			errCh <- nil
		}()
	} else {
		s.log.Warning("no access key set; serving local transport only")
	}
	if local != nil {
		handler := s.rpc.localHandler()
		go func() {
			s.log.Info("rpc listening on %s", local.Addr())
			if err := http.Serve(local, handler); err != nil {
				// Closing the listener during shutdown surfaces here.
				errCh <- nil
			}
		}()
	}

	select {
	case <-ctx.Done():
		s.Shutdown()
		return nil
	case err := <-errCh:
		s.Shutdown()
		return err
	}
}

// Shutdown gracefully stops both transports and the RPC bridge.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.local != nil {
		if err := s.local.Close(); err != nil {
			s.log.Warning("closing local listener: %v", err)
		}
		s.local = nil
	}
	if s.tcp != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.tcp.Shutdown(shutdownCtx); err != nil {
			s.log.Warning("shutting down http server: %v", err)
		}
		s.tcp = nil
	}
	s.rpc.Close()

	if err := cleanupSocket(); err != nil {
		s.log.Warning("removing socket file: %v", err)
	}
	return nil
}
