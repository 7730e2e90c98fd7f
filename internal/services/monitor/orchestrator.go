package monitor

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
	"github.com/edgewatch/edgewatch/internal/obs"
)

var (
	mRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_runs_total", Help: "Monitoring run cycles started",
	})
	mRunsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_runs_failed_total", Help: "Monitoring run cycles that ended in a failure report",
	})
	mRunDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "monitor_run_duration_seconds",
		Help:    "Full run cycle duration",
		Buckets: prometheus.DefBuckets,
	})
)

// Orchestrator executes one full monitoring pass per RunChecks call:
// authenticate, open one telemetry subscription for all devices, invoke each
// checker in registration order, report. Invocations are assumed serialized
// by the caller.
type Orchestrator struct {
	log      *zap.Logger
	client   monitoring.PlatformClient
	subs     monitoring.Subscriber
	reporter monitoring.Reporter
	registry *Registry
}

func NewOrchestrator(
	log *zap.Logger,
	client monitoring.PlatformClient,
	subs monitoring.Subscriber,
	reporter monitoring.Reporter,
	registry *Registry,
) *Orchestrator {
	return &Orchestrator{
		log:      log.With(zap.String("component", "monitor.orchestrator")),
		client:   client,
		subs:     subs,
		reporter: reporter,
		registry: registry,
	}
}

// RunChecks never returns an error: any run-time failure is converted into a
// single best-effort service failure report, and a failure of that report is
// only logged. A failed run is complete, not retried.
func (o *Orchestrator) RunChecks(ctx context.Context) {
	if o.registry.Empty() {
		return
	}
	tr := otel.Tracer("monitor.orchestrator")
	ctx, span := tr.Start(ctx, "monitor.run",
		trace.WithAttributes(attribute.Int("registry.size", o.registry.Size())),
	)
	defer span.End()

	log := obs.WithTrace(ctx, o.log)
	log.Info("starting checks", zap.Int("checkers", o.registry.Size()))

	mRuns.Inc()
	sw := NewStopwatch()
	if err := o.runOnce(ctx, tr); err != nil {
		mRunsFailed.Inc()
		span.RecordError(err)
		log.Warn("run failed", zap.Error(err))
		if rerr := o.reporter.ReportServiceFailure(ctx, monitoring.ServiceKeyGeneral, err); rerr != nil {
			// a broken reporting path must never escalate past this point
			log.Error("service failure reporting failed", zap.Error(rerr))
		}
	} else {
		log.Debug("finished checks")
	}
	mRunDur.Observe(sw.Elapsed().Seconds())
}

func (o *Orchestrator) runOnce(ctx context.Context, tr trace.Tracer) error {
	sw := NewStopwatch()
	token, err := o.client.Login(ctx)
	// the login measurement is taken whether or not the call succeeded
	o.reporter.ReportLatency(monitoring.LatencyLogin, sw.Elapsed())
	if err != nil {
		return &monitoring.AuthError{Err: err}
	}

	sub, err := o.subs.Subscribe(ctx, token, o.registry.DeviceIDs(), monitoring.TestTelemetryKey)
	if err != nil {
		return &monitoring.SubscriptionError{Err: err}
	}
	defer func() { _ = sub.Close() }()

	for _, e := range o.registry.Entries() {
		ctxCheck, span := tr.Start(ctx, "monitor.check",
			trace.WithAttributes(
				attribute.String("transport", e.Checker.Transport()),
				attribute.String("device.id", e.DeviceID),
			),
		)
		err := e.Checker.Check(ctxCheck, sub)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		if err != nil {
			return &monitoring.CheckError{
				Transport: e.Checker.Transport(),
				DeviceID:  e.DeviceID,
				Err:       err,
			}
		}
	}

	if err := o.reporter.FlushLatencies(ctx, o.client); err != nil {
		return fmt.Errorf("report latencies: %w", err)
	}
	return nil
}
