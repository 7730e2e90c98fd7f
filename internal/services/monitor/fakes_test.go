package monitor

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

type fakeClient struct {
	mu        sync.Mutex
	loginErr  error
	logins    int
	devices   int
	ensured   []string
	ensureErr error
	posted    []map[string]float64
	postErr   error
	calls     *[]string
}

func (f *fakeClient) Login(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	f.trace("login")
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "token-1", nil
}

func (f *fakeClient) EnsureDevice(_ context.Context, name string) (*monitoring.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	f.devices++
	f.ensured = append(f.ensured, name)
	f.trace("ensure " + name)
	return &monitoring.Device{
		ID:    fmt.Sprintf("dev-%d", f.devices),
		Token: fmt.Sprintf("tok-%d", f.devices),
	}, nil
}

func (f *fakeClient) PostLatencies(_ context.Context, latencies map[string]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace("flush")
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, latencies)
	return nil
}

func (f *fakeClient) trace(op string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, op)
	}
}

type fakeSub struct {
	mu     sync.Mutex
	closes int
}

func (s *fakeSub) Await(context.Context, string) (string, error) { return "", nil }

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSub) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type fakeSubscriber struct {
	err       error
	sub       *fakeSub
	calls     int
	deviceIDs []string
	key       string
}

func (f *fakeSubscriber) Subscribe(_ context.Context, _ string, deviceIDs []string, key string) (monitoring.Subscription, error) {
	f.calls++
	f.deviceIDs = deviceIDs
	f.key = key
	if f.err != nil {
		return nil, f.err
	}
	if f.sub == nil {
		f.sub = &fakeSub{}
	}
	return f.sub, nil
}

type fakeChecker struct {
	transport string
	target    *monitoring.Target
	deviceID  string
	initErr   error
	checkErr  error
	inits     int
	checks    int
	onCheck   func()
}

func (c *fakeChecker) Transport() string           { return c.transport }
func (c *fakeChecker) Target() *monitoring.Target  { return c.target }
func (c *fakeChecker) DeviceID() string            { return c.deviceID }

func (c *fakeChecker) Initialize(_ context.Context, client monitoring.PlatformClient) error {
	c.inits++
	if c.initErr != nil {
		return c.initErr
	}
	if c.deviceID == "" {
		dev, err := client.EnsureDevice(context.Background(), c.target.DeviceName)
		if err != nil {
			return err
		}
		c.deviceID = dev.ID
	}
	return nil
}

func (c *fakeChecker) Check(context.Context, monitoring.Subscription) error {
	c.checks++
	if c.onCheck != nil {
		c.onCheck()
	}
	return c.checkErr
}

type fakeConfig struct {
	transport string
	targets   []*monitoring.Target
	checkers  []*fakeChecker
	newErr    error
	initErr   error
	checkErr  error
}

func (c *fakeConfig) Transport() string              { return c.transport }
func (c *fakeConfig) Targets() []*monitoring.Target  { return c.targets }

func (c *fakeConfig) NewTarget(baseURL string) *monitoring.Target {
	return &monitoring.Target{
		BaseURL:    baseURL,
		DeviceName: c.transport + " " + baseURL,
	}
}

func (c *fakeConfig) NewChecker(target *monitoring.Target) (monitoring.HealthChecker, error) {
	if c.newErr != nil {
		return nil, c.newErr
	}
	hc := &fakeChecker{
		transport: c.transport,
		target:    target,
		initErr:   c.initErr,
		checkErr:  c.checkErr,
	}
	c.checkers = append(c.checkers, hc)
	return hc, nil
}

type fakeReporter struct {
	mu        sync.Mutex
	latencies []string
	failures  []string
	flushes   int
	flushErr  error
	failErr   error
}

func (r *fakeReporter) ReportLatency(name string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies = append(r.latencies, name)
}

func (r *fakeReporter) FlushLatencies(context.Context, monitoring.PlatformClient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return r.flushErr
}

func (r *fakeReporter) ReportServiceFailure(_ context.Context, serviceKey string, _ error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, serviceKey)
	return r.failErr
}

type fakeResolver struct {
	ips map[string][]string
	err error
}

func (f *fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	if f.err != nil {
		return nil, f.err
	}
	ips, ok := f.ips[host]
	if !ok {
		return nil, fmt.Errorf("no such host %s", host)
	}
	out := make([]net.IPAddr, 0, len(ips))
	for _, ip := range ips {
		out = append(out, net.IPAddr{IP: net.ParseIP(ip)})
	}
	return out, nil
}
