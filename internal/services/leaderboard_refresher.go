package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/domain"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// LeaderboardSource recomputes the leaderboard and writes it to the cache.
type LeaderboardSource interface {
	RefreshLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// LeaderboardRefresher keeps the cached leaderboard warm so reads rarely
// fall through to the store.
type LeaderboardRefresher struct {
	source   LeaderboardSource
	monitor  ConnectionHealth
	logger   *zap.Logger
	cron     *cron.Cron
	interval time.Duration
}

func NewLeaderboardRefresher(source LeaderboardSource, monitor ConnectionHealth, interval time.Duration, logger *zap.Logger) (*LeaderboardRefresher, error) {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	lr := &LeaderboardRefresher{
		source:   source,
		monitor:  monitor,
		logger:   logger,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := lr.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if err := lr.Refresh(ctx); err != nil {
			lr.logger.Error("leaderboard refresh failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return lr, nil
}

// Start launches the cron scheduler.
func (lr *LeaderboardRefresher) Start() {
	if lr == nil || lr.cron == nil {
		return
	}
	lr.cron.Start()
	lr.logger.Info("leaderboard refresher started", zap.Duration("interval", lr.interval))
}

// Stop waits for a running refresh to finish or ctx to expire.
func (lr *LeaderboardRefresher) Stop(ctx context.Context) error {
	if lr == nil || lr.cron == nil {
		return nil
	}
	stopCtx := lr.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	lr.logger.Info("leaderboard refresher stopped")
	return nil
}

// Refresh recomputes the leaderboard once. It is a no-op while the monitor
// reports a dependency offline.
func (lr *LeaderboardRefresher) Refresh(ctx context.Context) error {
	if lr == nil || lr.source == nil {
		return nil
	}
	if lr.monitor != nil && !lr.monitor.IsOnline() {
		lr.logger.Debug("skipping leaderboard refresh (offline)")
		return nil
	}
	entries, err := lr.source.RefreshLeaderboard(ctx)
	if err != nil {
		return err
	}
	lr.logger.Debug("leaderboard refreshed", zap.Int("entries", len(entries)))
	return nil
}
