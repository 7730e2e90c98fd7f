package monitoring

import (
	"context"
	"time"
)

// Config groups the targets of one checker family (one config per
// protocol/transport). Each family supplies the capabilities the
// bootstrapper needs: a target constructor for synthetic per-IP targets and
// a checker factory bound to this family.
type Config interface {
	Transport() string
	Targets() []*Target
	NewTarget(baseURL string) *Target
	NewChecker(target *Target) (HealthChecker, error)
}

// HealthChecker probes exactly one target. Initialize is called once at
// bootstrap against the authenticated platform client and may perform remote
// setup (provisioning the monitoring device); Check is called once per run
// against the shared telemetry subscription.
type HealthChecker interface {
	Transport() string
	Target() *Target
	// DeviceID is valid after Initialize returned nil.
	DeviceID() string
	Initialize(ctx context.Context, client PlatformClient) error
	Check(ctx context.Context, sub Subscription) error
}

// PlatformClient is the authenticated REST side of the monitored platform.
type PlatformClient interface {
	Login(ctx context.Context) (token string, err error)
	EnsureDevice(ctx context.Context, name string) (*Device, error)
	PostLatencies(ctx context.Context, latencies map[string]float64) error
}

// Subscriber opens telemetry subscriptions scoped to one session token.
type Subscriber interface {
	Subscribe(ctx context.Context, token string, deviceIDs []string, key string) (Subscription, error)
}

// Subscription is a live telemetry channel shared by all checkers within one
// run. It is owned and closed by the orchestrator only.
type Subscription interface {
	// Await blocks until the next telemetry value for the device arrives.
	Await(ctx context.Context, deviceID string) (string, error)
	Close() error
}

// Reporter is the metrics sink. Any of its methods may fail; such failures
// must never escape the orchestrator's top-level failure handler.
type Reporter interface {
	ReportLatency(name string, elapsed time.Duration)
	FlushLatencies(ctx context.Context, client PlatformClient) error
	ReportServiceFailure(ctx context.Context, serviceKey string, cause error) error
}
