package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequestsTotal counts upstream HTTP requests per provider and result.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_plugin_upstream_requests_total",
			Help: "Total upstream HTTP requests",
		},
		[]string{"provider", "status"},
	)

	// UpstreamRequestDuration tracks upstream latency per provider.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kiln_plugin_upstream_request_duration_seconds",
			Help:    "Upstream HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	// ActionInvocationsTotal counts action invocations per action and outcome.
	ActionInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_plugin_action_invocations_total",
			Help: "Total action invocations",
		},
		[]string{"action", "outcome"},
	)

	// ActionDuration tracks end-to-end action latency.
	ActionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kiln_plugin_action_duration_seconds",
			Help:    "Action invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(ActionInvocationsTotal)
	prometheus.MustRegister(ActionDuration)
}

// ObserveUpstream records one upstream request. status is the HTTP status code, or
// zero when the request failed before a response arrived.
func ObserveUpstream(provider string, status int, duration time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequestsTotal.WithLabelValues(provider, label).Inc()
	UpstreamRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObserveAction records one action invocation.
func ObserveAction(action, outcome string, duration time.Duration) {
	ActionInvocationsTotal.WithLabelValues(action, outcome).Inc()
	ActionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// Handler exposes the registered metrics in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on addr until ctx is cancelled.
func StartServer(ctx context.Context, addr string) error {
	if addr == "" {
		return errors.New("metrics address is empty")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
