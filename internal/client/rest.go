package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

type RESTConfig struct {
	BaseURL   string
	Username  string
	Password  string
	Timeout   time.Duration
	VerifyTLS bool
}

// REST talks to the monitored platform's HTTP API: session login, monitoring
// device provisioning and latency reporting.
type REST struct {
	c   *http.Client
	cfg RESTConfig
	log *zap.Logger

	mu    sync.Mutex
	token string
}

var _ monitoring.PlatformClient = (*REST)(nil)

func NewREST(cfg RESTConfig, log *zap.Logger) *REST {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	return &REST{
		c: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		cfg: cfg,
		log: log.With(zap.String("component", "client.rest")),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login obtains a fresh session token and remembers it for subsequent calls.
func (r *REST) Login(ctx context.Context) (string, error) {
	var resp loginResponse
	err := r.do(ctx, http.MethodPost, "/api/auth/login",
		loginRequest{Username: r.cfg.Username, Password: r.cfg.Password}, &resp, false)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.token = resp.Token
	r.mu.Unlock()
	return resp.Token, nil
}

type deviceRequest struct {
	Name string `json:"name"`
}

type deviceResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// EnsureDevice gets or creates the monitoring device with the given name and
// returns its identifier and transport credential.
func (r *REST) EnsureDevice(ctx context.Context, name string) (*monitoring.Device, error) {
	var resp deviceResponse
	if err := r.do(ctx, http.MethodPost, "/api/monitoring/devices", deviceRequest{Name: name}, &resp, true); err != nil {
		return nil, err
	}
	r.log.Debug("device ensured", zap.String("name", name), zap.String("id", resp.ID))
	return &monitoring.Device{ID: resp.ID, Token: resp.Token}, nil
}

// PostLatencies pushes the accumulated latency measurements of one run.
func (r *REST) PostLatencies(ctx context.Context, latencies map[string]float64) error {
	return r.do(ctx, http.MethodPost, "/api/monitoring/latencies", latencies, nil, true)
}

func (r *REST) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		r.mu.Lock()
		token := r.token
		r.mu.Unlock()
		if token == "" {
			return fmt.Errorf("%s: not logged in", path)
		}
		req.Header.Set("X-Authorization", "Bearer "+token)
	}

	resp, err := r.c.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}
