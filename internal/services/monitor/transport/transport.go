// Package transport holds the per-protocol health checker families. Each
// family is a monitoring.Config that knows how to build targets and checkers
// for its own transport.
package transport

import (
	"context"
	"fmt"
	"net/url"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

// deviceName derives the monitoring device name for a synthetic per-IP
// target from its base URL.
func deviceName(transport, baseURL string) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return fmt.Sprintf("%s monitor [%s]", transport, host)
}

// awaitTelemetry blocks on the shared subscription until the checker's own
// device reports, then verifies the payload round-tripped unchanged.
func awaitTelemetry(ctx context.Context, sub monitoring.Subscription, deviceID, want string) error {
	got, err := sub.Await(ctx, deviceID)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("device %s: unexpected telemetry value %q, want %q", deviceID, got, want)
	}
	return nil
}
