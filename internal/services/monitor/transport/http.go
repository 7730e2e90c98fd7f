package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
	"github.com/edgewatch/edgewatch/internal/services/monitor"
)

// HTTPConfig is the checker family probing the platform's HTTP device API.
type HTTPConfig struct {
	Log      *zap.Logger
	Reporter monitoring.Reporter

	TargetList     []*monitoring.Target
	RequestTimeout time.Duration
	VerifyTLS      bool
}

var _ monitoring.Config = (*HTTPConfig)(nil)

func (c *HTTPConfig) Transport() string { return "http" }

func (c *HTTPConfig) Targets() []*monitoring.Target { return c.TargetList }

func (c *HTTPConfig) NewTarget(baseURL string) *monitoring.Target {
	return &monitoring.Target{
		BaseURL:    baseURL,
		DeviceName: deviceName(c.Transport(), baseURL),
	}
}

func (c *HTTPConfig) NewChecker(target *monitoring.Target) (monitoring.HealthChecker, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   c.RequestTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !c.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	return &httpChecker{
		cfg:    c,
		target: target,
		log:    c.Log.With(zap.String("component", "checker.http"), zap.String("url", target.BaseURL)),
		c:      &http.Client{Timeout: c.RequestTimeout, Transport: transport},
	}, nil
}

type httpChecker struct {
	cfg    *HTTPConfig
	target *monitoring.Target
	log    *zap.Logger
	c      *http.Client
	device *monitoring.Device
}

func (h *httpChecker) Transport() string { return h.cfg.Transport() }

func (h *httpChecker) Target() *monitoring.Target { return h.target }

func (h *httpChecker) DeviceID() string {
	if h.device == nil {
		return ""
	}
	return h.device.ID
}

func (h *httpChecker) Initialize(ctx context.Context, client monitoring.PlatformClient) error {
	device, err := client.EnsureDevice(ctx, h.target.DeviceName)
	if err != nil {
		return fmt.Errorf("ensure device %q: %w", h.target.DeviceName, err)
	}
	h.device = device
	return nil
}

func (h *httpChecker) Check(ctx context.Context, sub monitoring.Subscription) error {
	value := uuid.NewString()
	sw := monitor.NewStopwatch()
	if err := h.publish(ctx, value); err != nil {
		return fmt.Errorf("publish telemetry: %w", err)
	}
	if err := awaitTelemetry(ctx, sub, h.device.ID, value); err != nil {
		return err
	}
	h.cfg.Reporter.ReportLatency(monitoring.TransportLatency(h.Transport()), sw.Elapsed())
	return nil
}

func (h *httpChecker) publish(ctx context.Context, value string) error {
	body, _ := json.Marshal(map[string]string{monitoring.TestTelemetryKey: value})
	url := fmt.Sprintf("%s/api/v1/%s/telemetry", h.target.BaseURL, h.device.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
