package monitor

import "github.com/edgewatch/edgewatch/internal/domain/monitoring"

// Entry is one initialized checker and the device identifier it reports
// telemetry under.
type Entry struct {
	Checker  monitoring.HealthChecker
	DeviceID string
}

// Registry is the ordered set of initialized checkers. Built once by the
// bootstrapper and read-only afterwards; an empty registry means monitoring
// is disabled.
type Registry struct {
	entries []Entry
}

func NewRegistry(entries ...Entry) *Registry {
	return &Registry{entries: entries}
}

func (r *Registry) add(c monitoring.HealthChecker) {
	r.entries = append(r.entries, Entry{Checker: c, DeviceID: c.DeviceID()})
}

func (r *Registry) Empty() bool { return len(r.entries) == 0 }

func (r *Registry) Size() int { return len(r.entries) }

// Entries returns the checkers in registration order.
func (r *Registry) Entries() []Entry { return r.entries }

// DeviceIDs returns the identifiers of every monitored device, in
// registration order, for the shared telemetry subscription.
func (r *Registry) DeviceIDs() []string {
	ids := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		ids = append(ids, e.DeviceID)
	}
	return ids
}
