package monitor_config

import (
	"strings"

	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("platform.base_url", "http://localhost:8080")
	v.SetDefault("platform.username", "monitor@edgewatch.local")
	v.SetDefault("platform.password", "monitor")
	v.SetDefault("platform.timeout", "10s")
	v.SetDefault("platform.verify_tls", true)

	v.SetDefault("ws.url", "ws://localhost:8080/api/ws")
	v.SetDefault("ws.handshake_timeout", "10s")
	v.SetDefault("ws.ack_timeout", "10s")
	v.SetDefault("ws.await_timeout", "10s")

	v.SetDefault("http.request_timeout", "10s")
	v.SetDefault("http.verify_tls", true)

	v.SetDefault("mqtt.connect_timeout", "10s")
	v.SetDefault("mqtt.publish_timeout", "10s")
	v.SetDefault("mqtt.qos", 1)

	v.SetDefault("monitoring.interval", "60s")
	v.SetDefault("monitoring.skip_unresolved", false)

	v.SetDefault("kafka.enable", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "edgewatch.monitor.events")

	v.SetDefault("server.metrics_addr", ":8083")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.dir", "")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "monitor")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
