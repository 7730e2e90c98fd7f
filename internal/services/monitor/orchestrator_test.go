package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

func newTestOrchestrator(reg *Registry, client *fakeClient, subs *fakeSubscriber, rep *fakeReporter) *Orchestrator {
	return NewOrchestrator(zap.NewNop(), client, subs, rep, reg)
}

func registryOf(checkers ...*fakeChecker) *Registry {
	entries := make([]Entry, 0, len(checkers))
	for _, c := range checkers {
		entries = append(entries, Entry{Checker: c, DeviceID: c.deviceID})
	}
	return NewRegistry(entries...)
}

func TestRunChecksEmptyRegistryIsNoOp(t *testing.T) {
	client := &fakeClient{}
	subs := &fakeSubscriber{}
	rep := &fakeReporter{}

	orc := newTestOrchestrator(NewRegistry(), client, subs, rep)
	orc.RunChecks(context.Background())

	require.Zero(t, client.logins)
	require.Zero(t, subs.calls)
	require.Empty(t, rep.latencies)
	require.Empty(t, rep.failures)
}

func TestRunChecksSuccess(t *testing.T) {
	c1 := &fakeChecker{transport: "http", deviceID: "dev-1"}
	c2 := &fakeChecker{transport: "http", deviceID: "dev-2"}
	client := &fakeClient{}
	subs := &fakeSubscriber{}
	rep := &fakeReporter{}

	orc := newTestOrchestrator(registryOf(c1, c2), client, subs, rep)
	orc.RunChecks(context.Background())

	require.Equal(t, 1, client.logins)
	require.Equal(t, 1, subs.calls)
	require.Equal(t, []string{"dev-1", "dev-2"}, subs.deviceIDs)
	require.Equal(t, monitoring.TestTelemetryKey, subs.key)
	require.Equal(t, 1, c1.checks)
	require.Equal(t, 1, c2.checks)
	require.Equal(t, []string{monitoring.LatencyLogin}, rep.latencies)
	require.Equal(t, 1, rep.flushes)
	require.Empty(t, rep.failures)
	require.Equal(t, 1, subs.sub.closeCount())
}

func TestRunChecksAuthFailure(t *testing.T) {
	c1 := &fakeChecker{transport: "http", deviceID: "dev-1"}
	client := &fakeClient{loginErr: errors.New("bad credentials")}
	subs := &fakeSubscriber{}
	rep := &fakeReporter{}

	orc := newTestOrchestrator(registryOf(c1), client, subs, rep)
	orc.RunChecks(context.Background())

	// login latency is measured even when login fails
	require.Equal(t, []string{monitoring.LatencyLogin}, rep.latencies)
	require.Zero(t, subs.calls)
	require.Zero(t, c1.checks)
	require.Equal(t, []string{monitoring.ServiceKeyGeneral}, rep.failures)
	require.Zero(t, rep.flushes)
}

func TestRunChecksSubscribeFailure(t *testing.T) {
	c1 := &fakeChecker{transport: "http", deviceID: "dev-1"}
	client := &fakeClient{}
	subs := &fakeSubscriber{err: errors.New("no ack")}
	rep := &fakeReporter{}

	orc := newTestOrchestrator(registryOf(c1), client, subs, rep)
	orc.RunChecks(context.Background())

	require.Zero(t, c1.checks)
	require.Equal(t, []string{monitoring.ServiceKeyGeneral}, rep.failures)
}

func TestRunChecksFailFastOnFirstCheckerError(t *testing.T) {
	c1 := &fakeChecker{transport: "http", deviceID: "dev-1", checkErr: errors.New("no telemetry")}
	c2 := &fakeChecker{transport: "http", deviceID: "dev-2"}
	client := &fakeClient{}
	subs := &fakeSubscriber{}
	rep := &fakeReporter{}

	orc := newTestOrchestrator(registryOf(c1, c2), client, subs, rep)
	orc.RunChecks(context.Background())

	require.Equal(t, 1, c1.checks)
	require.Zero(t, c2.checks, "checkers after the failing one must not run")
	require.Equal(t, []string{monitoring.ServiceKeyGeneral}, rep.failures)
	require.Zero(t, rep.flushes)
	require.Equal(t, 1, subs.sub.closeCount(), "subscription must be released on the failure path")
}

func TestRunChecksSubscriptionClosedExactlyOnce(t *testing.T) {
	c1 := &fakeChecker{transport: "http", deviceID: "dev-1"}
	client := &fakeClient{}
	subs := &fakeSubscriber{}
	rep := &fakeReporter{flushErr: errors.New("sink down")}

	orc := newTestOrchestrator(registryOf(c1), client, subs, rep)
	orc.RunChecks(context.Background())

	require.Equal(t, 1, subs.sub.closeCount())
	require.Equal(t, []string{monitoring.ServiceKeyGeneral}, rep.failures)
}

func TestRunChecksReporterFailureNeverPropagates(t *testing.T) {
	c1 := &fakeChecker{transport: "http", deviceID: "dev-1", checkErr: errors.New("boom")}
	client := &fakeClient{}
	subs := &fakeSubscriber{}
	rep := &fakeReporter{failErr: errors.New("reporting path broken")}

	orc := newTestOrchestrator(registryOf(c1), client, subs, rep)
	require.NotPanics(t, func() {
		orc.RunChecks(context.Background())
	})
	require.Equal(t, []string{monitoring.ServiceKeyGeneral}, rep.failures)
}

func TestRunChecksSequentialOrder(t *testing.T) {
	var order []string
	c1 := &fakeChecker{transport: "http", deviceID: "dev-1", onCheck: func() { order = append(order, "dev-1") }}
	c2 := &fakeChecker{transport: "mqtt", deviceID: "dev-2", onCheck: func() { order = append(order, "dev-2") }}
	c3 := &fakeChecker{transport: "http", deviceID: "dev-3", onCheck: func() { order = append(order, "dev-3") }}

	orc := newTestOrchestrator(registryOf(c1, c2, c3), &fakeClient{}, &fakeSubscriber{}, &fakeReporter{})
	orc.RunChecks(context.Background())

	require.Equal(t, []string{"dev-1", "dev-2", "dev-3"}, order)
}
