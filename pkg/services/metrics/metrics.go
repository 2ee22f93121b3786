package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/statecommit/balance-mpt/pkg/config"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Service serves metrics.
type Service struct {
	http        []*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string
	started     atomic.Bool
}

// NewService configures logger and returns new service instance.
func NewService(name string, httpServers []*http.Server, cfg config.BasicService, log *zap.Logger) *Service {
	return &Service{
		http:        httpServers,
		config:      cfg,
		serviceType: name,
		log:         log.With(zap.String("service", name)),
	}
}

// Name returns the service name.
func (ms *Service) Name() string {
	return ms.serviceType
}

// Start runs http service with the exposed endpoint on the configured port.
// It's a no-op for a disabled or already started service.
func (ms *Service) Start() error {
	if !ms.config.Enabled {
		ms.log.Info("service hasn't started since it's disabled")
		return nil
	}
	if !ms.started.CAS(false, true) {
		ms.log.Info("service already started")
		return nil
	}
	listeners := make([]net.Listener, 0, len(ms.http))
	for _, srv := range ms.http {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			ms.started.Store(false)
			return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
		}
		listeners = append(listeners, ln)
	}
	for i, srv := range ms.http {
		srv.Addr = listeners[i].Addr().String() // Fix the actual address if port was 0.
		ms.log.Info("starting service", zap.String("endpoint", srv.Addr))
		go func(s *http.Server, ln net.Listener) {
			err := s.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				ms.log.Error("failed to start service", zap.String("endpoint", s.Addr), zap.Error(err))
			}
		}(srv, listeners[i])
	}
	return nil
}

// Addresses returns the addresses the service listens on.
func (ms *Service) Addresses() []string {
	res := make([]string, len(ms.http))
	for i, srv := range ms.http {
		res[i] = srv.Addr
	}
	return res
}

// ShutDown stops the service.
func (ms *Service) ShutDown() {
	if !ms.config.Enabled || !ms.started.CAS(true, false) {
		return
	}
	for _, srv := range ms.http {
		ms.log.Info("shutting down service", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			ms.log.Error("can't shut service down", zap.String("endpoint", srv.Addr), zap.Error(err))
		}
	}
	_ = ms.log.Sync()
}
