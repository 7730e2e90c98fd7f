package kafka

import "context"

type MonitorEvents interface {
	PublishServiceFailure(ctx context.Context, serviceKey, message string) error
	PublishRunCompleted(ctx context.Context, latencies map[string]float64) error
}
