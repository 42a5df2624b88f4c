package repository

import (
	"context"
	"time"

	"github.com/fastygo/urquest/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttl time.Duration) error
}

// LeaderboardCache holds the last computed leaderboard. Every Invalidate
// advances an epoch; a writer reads Epoch before computing and Set stores the
// result only while that epoch is still current, so a board computed before
// an approval committed never outlives the approval's invalidation.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error)
	Epoch(ctx context.Context) (int64, error)
	// Set reports whether the entries were stored.
	Set(ctx context.Context, epoch int64, entries []domain.LeaderboardEntry) (bool, error)
	Invalidate(ctx context.Context) error
}
