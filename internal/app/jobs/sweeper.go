// Package jobs runs periodic background maintenance.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

// Expirer deletes rows whose expiry has passed and reports how many went
type Expirer interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ExpirerFunc adapts a function to Expirer
type ExpirerFunc func(ctx context.Context, now time.Time) (int64, error)

// DeleteExpired calls f
func (f ExpirerFunc) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f(ctx, now)
}

// Sweeper purges expired rows on a fixed interval
type Sweeper struct {
	targets  map[string]Expirer
	interval time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSweeper creates a sweeper over the named targets. The name becomes the
// table label of the sweeper metric.
func NewSweeper(targets map[string]Expirer, interval time.Duration, m *metrics.Metrics, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		targets:  targets,
		interval: interval,
		metrics:  m,
		logger:   log.With().Str("job", "sweeper").Logger(),
		now:      time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Int("targets", len(s.targets)).Msg("Sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs every target once. A failing target is logged and the rest still run.
// It returns the rows removed per target.
func (s *Sweeper) SweepOnce(ctx context.Context) map[string]int64 {
	now := s.now()
	removed := make(map[string]int64, len(s.targets))

	for name, target := range s.targets {
		n, err := target.DeleteExpired(ctx, now)
		if err != nil {
			if ctx.Err() != nil {
				return removed
			}
			s.logger.Error().Err(err).Str("table", name).Msg("Sweep failed")
			continue
		}
		removed[name] = n
		if n == 0 {
			continue
		}
		if s.metrics != nil {
			s.metrics.SweeperDeleted.WithLabelValues(name).Add(float64(n))
		}
		s.logger.Debug().Str("table", name).Int64("deleted", n).Msg("Expired rows removed")
	}
	return removed
}
