package monitor

import (
	"context"

	"go.uber.org/zap"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

// Bootstrap turns the configured target fleet into an initialized registry.
// Called exactly once at process startup; any failure is fatal (no partial
// checker set), except for DNS fan-out when SkipUnresolved is set.
type Bootstrap struct {
	log      *zap.Logger
	client   monitoring.PlatformClient
	expander *Expander

	// SkipUnresolved logs and skips the per-IP fan-out of targets whose
	// domain does not resolve, instead of failing the whole bootstrap.
	SkipUnresolved bool
}

func NewBootstrap(log *zap.Logger, client monitoring.PlatformClient, expander *Expander) *Bootstrap {
	return &Bootstrap{
		log:      log.With(zap.String("component", "monitor.bootstrap")),
		client:   client,
		expander: expander,
	}
}

func (b *Bootstrap) Initialize(ctx context.Context, configs []monitoring.Config) (*Registry, error) {
	reg := NewRegistry()
	if len(configs) == 0 {
		b.log.Info("no monitoring configs, monitoring disabled")
		return reg, nil
	}

	// one login shared by all checker initialization
	if _, err := b.client.Login(ctx); err != nil {
		return nil, &monitoring.BootstrapError{Target: "login", Err: err}
	}

	for _, cfg := range configs {
		for _, target := range cfg.Targets() {
			if !target.CheckDomainIPs {
				if err := b.initChecker(ctx, reg, cfg, target); err != nil {
					return nil, err
				}
				continue
			}
			// replica fan-out replaces the logical target with one
			// checker per resolved address
			synths, err := b.expander.Expand(ctx, cfg, target)
			if err != nil {
				if b.SkipUnresolved {
					b.log.Warn("skipping unresolvable target",
						zap.String("url", target.BaseURL), zap.Error(err))
					continue
				}
				return nil, &monitoring.BootstrapError{Target: target.BaseURL, Err: err}
			}
			for _, synth := range synths {
				if err := b.initChecker(ctx, reg, cfg, synth); err != nil {
					return nil, err
				}
			}
		}
	}
	return reg, nil
}

func (b *Bootstrap) initChecker(ctx context.Context, reg *Registry, cfg monitoring.Config, target *monitoring.Target) error {
	checker, err := cfg.NewChecker(target)
	if err != nil {
		return &monitoring.BootstrapError{Target: target.BaseURL, Err: err}
	}
	b.log.Info("initializing checker",
		zap.String("transport", cfg.Transport()),
		zap.String("url", target.BaseURL),
	)
	if err := checker.Initialize(ctx, b.client); err != nil {
		return &monitoring.BootstrapError{Target: target.BaseURL, Err: err}
	}
	reg.add(checker)
	return nil
}
