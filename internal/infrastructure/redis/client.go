package redis

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/urquest/internal/config"
)

// NewClient builds the client used for sessions and the leaderboard cache.
// The first ping is retried until cfg.ConnectMaxElapsed runs out; a zero
// budget means a single attempt.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*goRedis.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := goRedis.NewClient(opts)

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}
	if cfg.ConnectMaxElapsed <= 0 {
		err = ping()
	} else {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 250 * time.Millisecond
		bo.MaxInterval = 3 * time.Second
		bo.MaxElapsedTime = cfg.ConnectMaxElapsed
		err = backoff.RetryNotify(ping, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
			logger.Warn("redis not reachable, retrying", zap.String("addr", opts.Addr), zap.Error(err), zap.Duration("next", next))
		})
	}
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}
