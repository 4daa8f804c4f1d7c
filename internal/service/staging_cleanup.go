package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StagingCleanup periodically removes staging files older than maxAge. It
// catches copies whose scheduled deletion never ran, e.g. after a crash.
// Blocks until ctx is done.
func StagingCleanup(ctx context.Context, t, maxAge time.Duration, s *Staging, onRemoved func(int)) {
	ticker := time.NewTicker(t)
	defer ticker.Stop()

	zap.L().Debug("Staging cleanup attached", zap.Duration("tick_every", t), zap.Duration("max_age", maxAge))

	sweep := func() {
		n, err := s.Sweep(maxAge)
		if err != nil {
			zap.L().Error("Failed to sweep staging directory", zap.Error(err))
		}

		if n > 0 {
			zap.L().Debug("Removed stale staging files", zap.Int("count", n))
			if onRemoved != nil {
				onRemoved(n)
			}
		}
	}

	// Leftovers from a previous run
	sweep()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
