package monitor

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/edgewatch/edgewatch/internal/domain/monitoring"
)

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Expander fans one logical target out into one synthetic target per
// resolved IP address, so each backend replica is monitored individually.
type Expander struct {
	resolver Resolver
}

func NewExpander(r Resolver) *Expander {
	if r == nil {
		r = net.DefaultResolver
	}
	return &Expander{resolver: r}
}

// Expand resolves the target's host and synthesizes a target per distinct
// address: same scheme and port, host replaced by the literal IP, path and
// query cleared. The device-identifier semantics of the synthetic targets
// come from the config family's NewTarget capability. The logical target
// itself is not part of the result: its replicas stand in for it.
func (e *Expander) Expand(ctx context.Context, cfg monitoring.Config, target *monitoring.Target) ([]*monitoring.Target, error) {
	u, err := url.Parse(target.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", target.BaseURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("base url %q has no host", target.BaseURL)
	}

	addrs, err := e.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}

	seen := make(map[string]struct{}, len(addrs))
	out := make([]*monitoring.Target, 0, len(addrs))
	for _, addr := range addrs {
		ip := addr.IP.String()
		if _, ok := seen[ip]; ok {
			continue
		}
		seen[ip] = struct{}{}
		synth := url.URL{Scheme: u.Scheme, Host: hostPort(ip, u.Port())}
		out = append(out, cfg.NewTarget(synth.String()))
	}
	return out, nil
}

func hostPort(ip, port string) string {
	if port != "" {
		return net.JoinHostPort(ip, port)
	}
	if strings.Contains(ip, ":") {
		return "[" + ip + "]"
	}
	return ip
}
