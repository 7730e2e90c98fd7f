package monitor_config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/edgewatch/edgewatch/internal/obs"
)

type Target struct {
	URL            string `mapstructure:"url"`
	DeviceName     string `mapstructure:"device_name"`
	CheckDomainIPs bool   `mapstructure:"check_domain_ips"`
}

func (t Target) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.URL, validation.Required, is.RequestURI),
		validation.Field(&t.DeviceName, validation.Required),
	)
}

type Platform struct {
	BaseURL   string        `mapstructure:"base_url"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	Timeout   time.Duration `mapstructure:"timeout"`
	VerifyTLS bool          `mapstructure:"verify_tls"`
}

func (p Platform) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.BaseURL, validation.Required, is.RequestURI),
		validation.Field(&p.Username, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

type WS struct {
	URL              string        `mapstructure:"url"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	AckTimeout       time.Duration `mapstructure:"ack_timeout"`
	AwaitTimeout     time.Duration `mapstructure:"await_timeout"`
}

func (w WS) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.URL, validation.Required, is.RequestURI),
	)
}

type HTTPTransport struct {
	Targets        []Target      `mapstructure:"targets"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	VerifyTLS      bool          `mapstructure:"verify_tls"`
}

type MQTTTransport struct {
	Targets        []Target      `mapstructure:"targets"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
	QoS            int           `mapstructure:"qos"`
}

type Monitoring struct {
	Interval       time.Duration `mapstructure:"interval"`
	SkipUnresolved bool          `mapstructure:"skip_unresolved"`
}

type Kafka struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	Dir    string `mapstructure:"dir"`
}

func (l Log) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  l.Level,
		Pretty: l.Pretty,
		Dir:    l.Dir,
		App:    "monitor",
		Env:    "prod",
		Ver:    "dev",
	}
}

type OTEL struct {
	Enable      bool    `mapstructure:"enable"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
}

func (o OTEL) AsOTELConfig() obs.OTELConfig {
	return obs.OTELConfig{
		Enable:      o.Enable,
		ServiceName: o.ServiceName,
		SampleRatio: o.SampleRatio,
		Endpoint:    o.Endpoint,
	}
}

type Config struct {
	Platform   Platform      `mapstructure:"platform"`
	WS         WS            `mapstructure:"ws"`
	HTTP       HTTPTransport `mapstructure:"http"`
	MQTT       MQTTTransport `mapstructure:"mqtt"`
	Monitoring Monitoring    `mapstructure:"monitoring"`
	Kafka      Kafka         `mapstructure:"kafka"`
	Server     Server        `mapstructure:"server"`
	Log        Log           `mapstructure:"log"`
	OTEL       OTEL          `mapstructure:"otel"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Platform),
		validation.Field(&c.WS),
		validation.Field(&c.HTTP),
		validation.Field(&c.MQTT),
		validation.Field(&c.Monitoring,
			validation.By(func(any) error {
				if c.Monitoring.Interval < time.Second {
					return validation.NewError("validation_interval", "must be at least 1s")
				}
				return nil
			}),
		),
	)
}

func (h HTTPTransport) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Targets),
	)
}

func (m MQTTTransport) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Targets),
		validation.Field(&m.QoS, validation.Min(0), validation.Max(2)),
	)
}
