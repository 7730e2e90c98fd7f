package kafka

import (
	"context"
	"time"

	kafkadomain "github.com/edgewatch/edgewatch/internal/domain/kafka"
)

type MonitorEventsKafka struct {
	p *Producer
}

func NewMonitorEventsKafka(p *Producer) *MonitorEventsKafka { return &MonitorEventsKafka{p: p} }

var _ kafkadomain.MonitorEvents = (*MonitorEventsKafka)(nil)

type serviceFailureEvent struct {
	Event   string    `json:"event"`
	Service string    `json:"service"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type runCompletedEvent struct {
	Event     string             `json:"event"`
	Latencies map[string]float64 `json:"latencies_ms"`
	At        time.Time          `json:"at"`
}

func (e *MonitorEventsKafka) PublishServiceFailure(ctx context.Context, serviceKey, message string) error {
	return e.p.PublishJSON(ctx, []byte(serviceKey), serviceFailureEvent{
		Event:   "serviceFailure",
		Service: serviceKey,
		Message: message,
		At:      time.Now().UTC(),
	})
}

func (e *MonitorEventsKafka) PublishRunCompleted(ctx context.Context, latencies map[string]float64) error {
	return e.p.PublishJSON(ctx, []byte("run"), runCompletedEvent{
		Event:     "runCompleted",
		Latencies: latencies,
		At:        time.Now().UTC(),
	})
}
