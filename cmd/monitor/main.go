package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/client"
	config "github.com/edgewatch/edgewatch/internal/config/monitor"
	kafkadomain "github.com/edgewatch/edgewatch/internal/domain/kafka"
	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
	"github.com/edgewatch/edgewatch/internal/obs"
	"github.com/edgewatch/edgewatch/internal/repository/kafka"
	"github.com/edgewatch/edgewatch/internal/services/monitor"
	"github.com/edgewatch/edgewatch/internal/services/monitor/transport"
)

func wire(cfg *config.Config, reporter monitoring.Reporter, l *zap.Logger) []monitoring.Config {
	var configs []monitoring.Config
	if len(cfg.HTTP.Targets) > 0 {
		configs = append(configs, &transport.HTTPConfig{
			Log:            l,
			Reporter:       reporter,
			TargetList:     targets(cfg.HTTP.Targets),
			RequestTimeout: cfg.HTTP.RequestTimeout,
			VerifyTLS:      cfg.HTTP.VerifyTLS,
		})
	}
	if len(cfg.MQTT.Targets) > 0 {
		configs = append(configs, &transport.MQTTConfig{
			Log:            l,
			Reporter:       reporter,
			TargetList:     targets(cfg.MQTT.Targets),
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
			PublishTimeout: cfg.MQTT.PublishTimeout,
			QoS:            byte(cfg.MQTT.QoS),
		})
	}
	return configs
}

func targets(ts []config.Target) []*monitoring.Target {
	out := make([]*monitoring.Target, 0, len(ts))
	for _, t := range ts {
		out = append(out, &monitoring.Target{
			BaseURL:        t.URL,
			DeviceName:     t.DeviceName,
			CheckDomainIPs: t.CheckDomainIPs,
		})
	}
	return out
}

func main() {
	configPath := flag.String("config", os.Getenv("MONITOR_CONFIG"), "path to config file")
	flag.Parse()

	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	// otel
	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// platform clients
	rest := client.NewREST(client.RESTConfig{
		BaseURL:   cfg.Platform.BaseURL,
		Username:  cfg.Platform.Username,
		Password:  cfg.Platform.Password,
		Timeout:   cfg.Platform.Timeout,
		VerifyTLS: cfg.Platform.VerifyTLS,
	}, l)
	ws := client.NewWS(client.WSConfig{
		URL:              cfg.WS.URL,
		HandshakeTimeout: cfg.WS.HandshakeTimeout,
		AckTimeout:       cfg.WS.AckTimeout,
		AwaitTimeout:     cfg.WS.AwaitTimeout,
	}, l)

	// event sink
	var events kafkadomain.MonitorEvents
	if cfg.Kafka.Enable {
		prod := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
		defer func() { _ = prod.Close() }()
		events = kafka.NewMonitorEventsKafka(prod)
	}

	reporter := monitor.NewReporter(l, events)

	// bootstrap
	boot := monitor.NewBootstrap(l, rest, monitor.NewExpander(nil))
	boot.SkipUnresolved = cfg.Monitoring.SkipUnresolved
	registry, err := boot.Initialize(root, wire(cfg, reporter, l))
	if err != nil {
		l.Fatal("bootstrap", zap.Error(err))
	}

	// metrics
	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(context.Context) error { return nil }, l)

	orc := monitor.NewOrchestrator(l, rest, ws, reporter, registry)
	runner := &monitor.Runner{Log: l, Orc: orc, Interval: cfg.Monitoring.Interval}

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(root) }()

	select {
	case <-root.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
