package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

const (
	leaderboardKey      = "urquest:leaderboard:top"
	leaderboardEpochKey = "urquest:leaderboard:epoch"
)

// setIfEpoch writes KEYS[1] only while KEYS[2] still holds ARGV[1].
var setIfEpoch = redislib.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type leaderboardCache struct {
	client redislib.UniversalClient
	ttl    time.Duration
}

// NewLeaderboardCache stores the computed leaderboard as one JSON value next
// to an epoch counter advanced by every invalidation.
func NewLeaderboardCache(client redislib.UniversalClient, ttl time.Duration) repository.LeaderboardCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &leaderboardCache{client: client, ttl: ttl}
}

func (c *leaderboardCache) Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error) {
	raw, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (c *leaderboardCache) Epoch(ctx context.Context) (int64, error) {
	epoch, err := c.client.Get(ctx, leaderboardEpochKey).Int64()
	if errors.Is(err, redislib.Nil) {
		return 0, nil
	}
	return epoch, err
}

func (c *leaderboardCache) Set(ctx context.Context, epoch int64, entries []domain.LeaderboardEntry) (bool, error) {
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return false, err
	}
	stored, err := setIfEpoch.Run(ctx, c.client,
		[]string{leaderboardKey, leaderboardEpochKey},
		strconv.FormatInt(epoch, 10), string(payload), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate advances the epoch and drops the stored board in one
// transaction.
func (c *leaderboardCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Incr(ctx, leaderboardEpochKey)
		pipe.Del(ctx, leaderboardKey)
		return nil
	})
	return err
}
