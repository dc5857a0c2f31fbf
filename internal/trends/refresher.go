package trends

import (
	"context"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"go.uber.org/zap"
)

// Run refreshes once immediately and then every interval until ctx is done.
// Failures are logged and the previous derivation keeps being served.
func (s *Service) Run(ctx context.Context, every time.Duration) {
	if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		logger.L().Warn("initial refresh failed", zap.String("component", "trends"), zap.Error(err))
	}
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				logger.L().Warn("scheduled refresh failed",
					zap.String("component", "trends"),
					zap.Duration("interval", every),
					zap.Error(err),
				)
			}
		}
	}
}
