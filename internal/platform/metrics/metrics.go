// Package metrics は Prometheus メトリクスの収集と公開を提供します。
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "hr"

// DefaultPath はメトリクスを公開する HTTP パスです。
const DefaultPath = "/metrics"

// Metrics はサービスのメトリクス一式を保持します。
type Metrics struct {
	registry     *prometheus.Registry
	rpcRequests  *prometheus.CounterVec
	rpcLatency   *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// New は専用レジストリにメトリクスを登録して返します。
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total number of gRPC requests broken down by method and status code.",
		}, []string{"method", "code"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "latency_seconds",
			Help:      "Latency distribution of gRPC requests.",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.025,
				0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5,
			},
		}, []string{"method"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats_cache",
			Name:      "lookups_total",
			Help:      "Dashboard statistics cache lookups broken down by result.",
		}, []string{"result"}),
	}
	registry.MustRegister(m.rpcRequests, m.rpcLatency, m.cacheLookups)
	return m
}

// Registry はメトリクスのレジストリを返します。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// UnaryServerInterceptor は RPC ごとの件数とレイテンシを記録するインターセプターです。
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		m.rpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		m.rpcLatency.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// Router は path にメトリクスを登録したルーターを返します。
func (m *Metrics) Router(path string) *mux.Router {
	if path == "" {
		path = DefaultPath
	}
	r := mux.NewRouter()
	r.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

// Serve は addr でメトリクス用 HTTP サーバーを起動し、ctx のキャンセルで停止します。
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Router(DefaultPath),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
