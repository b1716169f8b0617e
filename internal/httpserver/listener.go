package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
)

// listener is the port binding and lifecycle shared by Server and
// MetricsServer.
type listener struct {
	name       string
	logger     *slog.Logger
	port       string
	server     *http.Server
	ready      chan struct{}
	inShutdown atomic.Bool
}

func newListener(logger *slog.Logger, name, port string) *listener {
	return &listener{
		name:   name,
		logger: logger.With("component", name),
		port:   port,
		ready:  make(chan struct{}),
	}
}

// Name returns the component name.
func (l *listener) Name() string {
	return l.name
}

// Ping returns nil when the server is ready to serve.
func (l *listener) Ping(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ready:
		return nil
	default:
		return fmt.Errorf("%s is not ready", l.name)
	}
}

// Ready is closed once the port is bound.
func (l *listener) Ready() <-chan struct{} {
	return l.ready
}

// serve binds the port synchronously and serves handler in a goroutine.
// Request contexts outlive ctx so streams end through their own signal.
func (l *listener) serve(ctx context.Context, handler http.Handler) error {
	if l.inShutdown.Load() {
		l.logger.InfoContext(ctx, l.name+" is shutting down, skipping start")

		return nil
	}

	addr := ":" + l.port
	l.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	lc := &net.ListenConfig{
		KeepAliveConfig: net.KeepAliveConfig{
			Enable: true,
		},
	}

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s tcp: %w", l.name, err)
	}

	l.logger.InfoContext(ctx, l.name+" listening", "addr", ln.Addr().String())

	go func() {
		close(l.ready)

		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.ErrorContext(ctx, l.name+" error", "reason", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops serving. Repeated calls are no-ops.
func (l *listener) Shutdown(ctx context.Context) error {
	if !l.inShutdown.CompareAndSwap(false, true) {
		l.logger.ErrorContext(ctx, l.name+" is already shutting down, skipping shutdown")

		return nil
	}

	defer func() {
		l.logger.InfoContext(ctx, l.name+" shut downed")
	}()

	l.logger.InfoContext(ctx, "shutting down "+l.name)

	if l.server == nil {
		return nil
	}

	if err := l.server.Shutdown(ctx); err != nil {
		l.logger.ErrorContext(ctx, "error shutting down "+l.name, "reason", err)

		return fmt.Errorf("%s shutdown: %w", l.name, err)
	}

	l.logger.InfoContext(ctx, l.name+" closed properly")

	return nil
}
