package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	kafkadomain "github.com/edgewatch/edgewatch/internal/domain/kafka"
	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
	"github.com/edgewatch/edgewatch/internal/obs/retry"
)

var (
	gLatency = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "monitor_phase_latency_seconds", Help: "Latest latency per monitored phase",
	}, []string{"name"})
	cFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_service_failures_total", Help: "Service failure reports emitted",
	}, []string{"service"})
)

// Reporter accumulates the latency measurements of one run, mirrors them as
// prometheus gauges and flushes them to the platform. Service failures are
// counted and, when an events sink is configured, published as events.
type Reporter struct {
	log    *zap.Logger
	events kafkadomain.MonitorEvents // nil when the sink is disabled

	mu        sync.Mutex
	latencies map[string]time.Duration
}

var _ monitoring.Reporter = (*Reporter)(nil)

func NewReporter(log *zap.Logger, events kafkadomain.MonitorEvents) *Reporter {
	return &Reporter{
		log:       log.With(zap.String("component", "monitor.reporter")),
		events:    events,
		latencies: make(map[string]time.Duration),
	}
}

func (r *Reporter) ReportLatency(name string, elapsed time.Duration) {
	r.mu.Lock()
	r.latencies[name] = elapsed
	r.mu.Unlock()
	gLatency.WithLabelValues(name).Set(elapsed.Seconds())
	r.log.Debug("latency", zap.String("name", name), zap.Duration("elapsed", elapsed))
}

// FlushLatencies pushes the measurements accumulated since the last flush to
// the platform and, best-effort, to the events sink. The accumulator is
// cleared only on success so a failed flush is retried by the next run.
func (r *Reporter) FlushLatencies(ctx context.Context, client monitoring.PlatformClient) error {
	r.mu.Lock()
	snapshot := make(map[string]float64, len(r.latencies))
	for name, d := range r.latencies {
		snapshot[name] = float64(d.Milliseconds())
	}
	r.mu.Unlock()
	if len(snapshot) == 0 {
		return nil
	}

	if err := client.PostLatencies(ctx, snapshot); err != nil {
		return err
	}

	r.mu.Lock()
	r.latencies = make(map[string]time.Duration)
	r.mu.Unlock()

	if r.events != nil {
		err := retry.Do(ctx, func() error {
			return r.events.PublishRunCompleted(ctx, snapshot)
		}, retry.DefaultPublishPolicy(r.log))
		if err != nil {
			r.log.Warn("run-completed event not published", zap.Error(err))
		}
	}
	return nil
}

func (r *Reporter) ReportServiceFailure(ctx context.Context, serviceKey string, cause error) error {
	cFailures.WithLabelValues(serviceKey).Inc()
	r.log.Error("service failure", zap.String("service", serviceKey), zap.Error(cause))
	if r.events == nil {
		return nil
	}
	return retry.Do(ctx, func() error {
		return r.events.PublishServiceFailure(ctx, serviceKey, cause.Error())
	}, retry.DefaultPublishPolicy(r.log))
}
