package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const minSweepInterval = time.Second

// SweepInterval returns the purge period for a TTL: half the TTL, at least one second.
func SweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	return interval
}

// RunSweeper purges expired sessions every interval until ctx is cancelled.
func RunSweeper(ctx context.Context, p Purger, interval time.Duration, logger *zap.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := p.PurgeExpired(ctx, now)
			if err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("purged expired sessions", zap.Int("count", n))
			}
		}
	}
}
