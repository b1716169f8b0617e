package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillcoder/podstream/internal/infra/shutdown"
)

const defaultMetricsPort = "9090"

// MetricsServer serves the podstream_* Prometheus metrics on a dedicated port.
type MetricsServer struct {
	*listener
}

// NewMetricsServer creates a metrics server for GET /metrics on port.
func NewMetricsServer(logger *slog.Logger, port string) *MetricsServer {
	if port == "" {
		port = defaultMetricsPort
	}

	return &MetricsServer{
		listener: newListener(logger, "metrics-server", port),
	}
}

var _ shutdown.Shutdowner = (*MetricsServer)(nil)

// Start binds the metrics port.
func (s *MetricsServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return s.serve(ctx, mux)
}
