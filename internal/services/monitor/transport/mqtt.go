package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
	"github.com/edgewatch/edgewatch/internal/services/monitor"
)

const mqttTelemetryTopic = "v1/devices/me/telemetry"

// MQTTConfig is the checker family probing the platform's MQTT transport.
// Target base URLs use broker form, e.g. tcp://host:1883.
type MQTTConfig struct {
	Log      *zap.Logger
	Reporter monitoring.Reporter

	TargetList     []*monitoring.Target
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
	QoS            byte
}

var _ monitoring.Config = (*MQTTConfig)(nil)

func (c *MQTTConfig) Transport() string { return "mqtt" }

func (c *MQTTConfig) Targets() []*monitoring.Target { return c.TargetList }

func (c *MQTTConfig) NewTarget(baseURL string) *monitoring.Target {
	return &monitoring.Target{
		BaseURL:    baseURL,
		DeviceName: deviceName(c.Transport(), baseURL),
	}
}

func (c *MQTTConfig) NewChecker(target *monitoring.Target) (monitoring.HealthChecker, error) {
	return &mqttChecker{
		cfg:    c,
		target: target,
		log:    c.Log.With(zap.String("component", "checker.mqtt"), zap.String("url", target.BaseURL)),
	}, nil
}

type mqttChecker struct {
	cfg    *MQTTConfig
	target *monitoring.Target
	log    *zap.Logger
	device *monitoring.Device
}

func (m *mqttChecker) Transport() string { return m.cfg.Transport() }

func (m *mqttChecker) Target() *monitoring.Target { return m.target }

func (m *mqttChecker) DeviceID() string {
	if m.device == nil {
		return ""
	}
	return m.device.ID
}

func (m *mqttChecker) Initialize(ctx context.Context, client monitoring.PlatformClient) error {
	device, err := client.EnsureDevice(ctx, m.target.DeviceName)
	if err != nil {
		return fmt.Errorf("ensure device %q: %w", m.target.DeviceName, err)
	}
	m.device = device
	return nil
}

func (m *mqttChecker) Check(ctx context.Context, sub monitoring.Subscription) error {
	value := uuid.NewString()
	sw := monitor.NewStopwatch()
	if err := m.publish(value); err != nil {
		return fmt.Errorf("publish telemetry: %w", err)
	}
	if err := awaitTelemetry(ctx, sub, m.device.ID, value); err != nil {
		return err
	}
	m.cfg.Reporter.ReportLatency(monitoring.TransportLatency(m.Transport()), sw.Elapsed())
	return nil
}

// publish opens a short-lived session per check: the device credential is
// the MQTT username, as on the monitored platform.
func (m *mqttChecker) publish(value string) error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.target.BaseURL).
		SetClientID("edgewatch-" + m.device.ID).
		SetUsername(m.device.Token).
		SetConnectTimeout(m.cfg.ConnectTimeout).
		SetAutoReconnect(false)

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(m.cfg.ConnectTimeout) {
		return fmt.Errorf("connect %s: timeout after %s", m.target.BaseURL, m.cfg.ConnectTimeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("connect %s: %w", m.target.BaseURL, err)
	}
	defer c.Disconnect(250)

	payload, _ := json.Marshal(map[string]string{monitoring.TestTelemetryKey: value})
	pub := c.Publish(mqttTelemetryTopic, m.cfg.QoS, false, payload)
	if !pub.WaitTimeout(m.cfg.PublishTimeout) {
		return fmt.Errorf("publish: timeout after %s", m.cfg.PublishTimeout)
	}
	if err := pub.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
