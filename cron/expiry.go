package cron

import (
	"context"
	"fmt"
	"time"

	"timeswap/services/availability"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartExpirySweep deactivates past slots on schedule. The returned scheduler
// is already running; call Stop on shutdown.
func StartExpirySweep(tracker availability.Tracker, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { RunExpirySweep(tracker, logger) }); err != nil {
		return nil, fmt.Errorf("invalid expiry schedule %q: %w", schedule, err)
	}
	c.Start()
	logger.Info("[ExpirySweep] scheduled", zap.String("schedule", schedule))
	return c, nil
}

// RunExpirySweep performs a single sweep.
func RunExpirySweep(tracker availability.Tracker, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := tracker.ExpireStale(ctx)
	if err != nil {
		logger.Error("[ExpirySweep] sweep failed", zap.Error(err))
		return
	}
	logger.Debug("[ExpirySweep] sweep finished", zap.Int64("expired", n))
}
