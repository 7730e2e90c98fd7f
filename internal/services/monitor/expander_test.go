package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

func TestExpandReplacesHostKeepsSchemeAndPort(t *testing.T) {
	resolver := &fakeResolver{ips: map[string][]string{
		"api.example.com": {"192.0.2.10", "192.0.2.11"},
	}}
	cfg := &fakeConfig{transport: "http"}
	target := &monitoring.Target{BaseURL: "https://api.example.com:8443/some/path?x=1", CheckDomainIPs: true}

	out, err := NewExpander(resolver).Expand(context.Background(), cfg, target)

	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "https://192.0.2.10:8443", out[0].BaseURL)
	require.Equal(t, "https://192.0.2.11:8443", out[1].BaseURL)
	for _, o := range out {
		require.NotEmpty(t, o.DeviceName)
	}
}

func TestExpandWithoutPort(t *testing.T) {
	resolver := &fakeResolver{ips: map[string][]string{
		"api.example.com": {"192.0.2.10"},
	}}
	cfg := &fakeConfig{transport: "http"}
	target := &monitoring.Target{BaseURL: "http://api.example.com", CheckDomainIPs: true}

	out, err := NewExpander(resolver).Expand(context.Background(), cfg, target)

	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "http://192.0.2.10", out[0].BaseURL)
}

func TestExpandDeduplicatesAddresses(t *testing.T) {
	resolver := &fakeResolver{ips: map[string][]string{
		"api.example.com": {"192.0.2.10", "192.0.2.10", "192.0.2.11"},
	}}
	cfg := &fakeConfig{transport: "http"}
	target := &monitoring.Target{BaseURL: "http://api.example.com:8080", CheckDomainIPs: true}

	out, err := NewExpander(resolver).Expand(context.Background(), cfg, target)

	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestExpandIPv6(t *testing.T) {
	resolver := &fakeResolver{ips: map[string][]string{
		"api.example.com": {"2001:db8::1"},
	}}
	cfg := &fakeConfig{transport: "http"}

	out, err := NewExpander(resolver).Expand(context.Background(), cfg,
		&monitoring.Target{BaseURL: "http://api.example.com:9090", CheckDomainIPs: true})
	require.NoError(t, err)
	require.Equal(t, "http://[2001:db8::1]:9090", out[0].BaseURL)

	out, err = NewExpander(resolver).Expand(context.Background(), cfg,
		&monitoring.Target{BaseURL: "http://api.example.com", CheckDomainIPs: true})
	require.NoError(t, err)
	require.Equal(t, "http://[2001:db8::1]", out[0].BaseURL)
}

func TestExpandResolutionError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("servfail")}
	cfg := &fakeConfig{transport: "http"}

	_, err := NewExpander(resolver).Expand(context.Background(), cfg,
		&monitoring.Target{BaseURL: "http://api.example.com", CheckDomainIPs: true})
	require.Error(t, err)
}

func TestExpandBadURL(t *testing.T) {
	cfg := &fakeConfig{transport: "http"}
	_, err := NewExpander(&fakeResolver{}).Expand(context.Background(), cfg,
		&monitoring.Target{BaseURL: "http://", CheckDomainIPs: true})
	require.Error(t, err)
}
