package monitor_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8080", cfg.Platform.BaseURL)
	require.Equal(t, 60*time.Second, cfg.Monitoring.Interval)
	require.False(t, cfg.Kafka.Enable)
	require.Empty(t, cfg.HTTP.Targets)
	require.Equal(t, 1, cfg.MQTT.QoS)
	require.Equal(t, ":8083", cfg.Server.MetricsAddr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
platform:
  base_url: https://platform.example.com
  username: probe@example.com
  password: s3cret
monitoring:
  interval: 30s
  skip_unresolved: true
http:
  targets:
    - url: https://one.example.com
      device_name: one
      check_domain_ips: true
mqtt:
  qos: 2
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://platform.example.com", cfg.Platform.BaseURL)
	require.Equal(t, 30*time.Second, cfg.Monitoring.Interval)
	require.True(t, cfg.Monitoring.SkipUnresolved)
	require.Len(t, cfg.HTTP.Targets, 1)
	require.Equal(t, "one", cfg.HTTP.Targets[0].DeviceName)
	require.True(t, cfg.HTTP.Targets[0].CheckDomainIPs)
	require.Equal(t, 2, cfg.MQTT.QoS)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
monitoring:
  interval: 100ms
`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsTargetWithoutDeviceName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  targets:
    - url: https://one.example.com
`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
