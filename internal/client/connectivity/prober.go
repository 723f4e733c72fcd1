package connectivity

import (
	"context"
	"log/slog"
	"time"
)

// DefaultProbeInterval is how often the prober checks the server
const DefaultProbeInterval = 10 * time.Second

// HealthChecker is satisfied by the API client
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Prober is a Source that periodically checks the server health endpoint.
// The source starts offline until the first probe succeeds.
type Prober struct {
	checker  HealthChecker
	logger   *slog.Logger
	interval time.Duration
	broadcaster
}

var _ Source = (*Prober)(nil)

// NewProber creates a new health prober
func NewProber(checker HealthChecker, interval time.Duration, logger *slog.Logger) *Prober {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Prober{
		checker:  checker,
		logger:   logger,
		interval: interval,
	}
}

// Probe checks the server once, updates the state and returns it
func (p *Prober) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	err := p.checker.Health(probeCtx)
	online := err == nil
	if p.set(online) {
		if online {
			p.logger.Info("Server is reachable")
		} else {
			p.logger.Info("Server is unreachable", "error", err)
		}
	}
	return online
}

// Run probes immediately and then on every interval until ctx is done
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
