package monitoring

// TestTelemetryKey is the telemetry key every checker publishes its test
// payload under; the shared websocket subscription covers this key for all
// monitored devices.
const TestTelemetryKey = "testData"

// LatencyLogin names the measurement taken around the platform login call.
const LatencyLogin = "login"

// ServiceKeyGeneral is the failure key used when a run aborts before it can
// be attributed to a single transport.
const ServiceKeyGeneral = "general"

// TransportLatency returns the latency key for one transport family,
// e.g. "httpTransport".
func TransportLatency(transport string) string {
	return transport + "Transport"
}

// Target is one logical endpoint under health surveillance. Targets are
// built from configuration at startup and never mutated afterwards; the
// device identifier that correlates their telemetry is owned by the checker
// bound to the target.
type Target struct {
	BaseURL        string
	DeviceName     string
	CheckDomainIPs bool
}

// Device is a provisioned monitoring device on the platform.
type Device struct {
	ID    string
	Token string
}
