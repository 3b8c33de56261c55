package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tphakala/keyclip/internal/logger"
	metricspkg "github.com/tphakala/keyclip/internal/observability/metrics"
)

// Endpoint serves the Prometheus metrics page.
type Endpoint struct {
	listenAddress string
	metrics       *Metrics
	log           logger.Logger

	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// NewEndpoint returns an endpoint for listenAddress. A nil logger uses the
// global logger.
func NewEndpoint(listenAddress string, metrics *Metrics, log logger.Logger) *Endpoint {
	if log == nil {
		log = logger.Global().Module("observability")
	}
	return &Endpoint{listenAddress: listenAddress, metrics: metrics, log: log}
}

// Start binds the listen address and serves until ctx is done or Shutdown
// is called.
func (e *Endpoint) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	e.metrics.RegisterHandlers(mux)

	listener, err := net.Listen("tcp", e.listenAddress)
	if err != nil {
		return err
	}
	e.listener = listener
	e.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	e.wg.Go(func() {
		e.log.Info("metrics endpoint starting", logger.String("address", listener.Addr().String()))
		if err := e.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("metrics HTTP server error", logger.Error(err))
		}
	})

	e.wg.Go(func() {
		<-ctx.Done()
		e.shutdown()
	})

	return nil
}

// Addr returns the bound address, or nil before Start.
func (e *Endpoint) Addr() net.Addr {
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// Wait blocks until the server and its shutdown watcher have exited.
func (e *Endpoint) Wait() {
	e.wg.Wait()
}

func (e *Endpoint) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(ctx); err != nil {
		e.log.Error("metrics server shutdown error", logger.Error(err))
	}
}
