package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

type UseCase struct {
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	cache       repository.LeaderboardCache
	logger      *zap.Logger
}

func New(
	users repository.UserRepository,
	submissions repository.SubmissionRepository,
	cache repository.LeaderboardCache,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:       users,
		submissions: submissions,
		cache:       cache,
		logger:      logger,
	}
}

// Profile assembles XP, level, rank and submission history for userID.
func (uc *UseCase) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	above, err := uc.users.CountWithXPAbove(ctx, user.TotalXP)
	if err != nil {
		return nil, err
	}
	history, err := uc.submissions.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	return &domain.Profile{
		UserID:   user.ID,
		Username: user.Username,
		TotalXP:  user.TotalXP,
		Level:    user.Level(),
		Rank:     domain.Rank(above),
		OrgID:    user.OrgID,
		History:  history,
	}, nil
}

// Leaderboard returns the top users, served from the cache when it is warm.
// Cache failures fall back to the store.
func (uc *UseCase) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	if uc.cache != nil {
		entries, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
		if ok {
			return entries, nil
		}
	}
	return uc.RefreshLeaderboard(ctx)
}

// RefreshLeaderboard recomputes the leaderboard and stores it in the cache.
// The cache epoch is read before the store so a board that raced with an
// approval is returned to the caller but not cached.
func (uc *UseCase) RefreshLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var (
		epoch     int64
		cacheable = uc.cache != nil
	)
	if cacheable {
		var err error
		if epoch, err = uc.cache.Epoch(ctx); err != nil {
			uc.logger.Warn("leaderboard cache epoch read failed", zap.Error(err))
			cacheable = false
		}
	}

	users, err := uc.users.Top(ctx, domain.LeaderboardSize)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, domain.LeaderboardEntry{
			Position: i + 1,
			UserID:   user.ID,
			Username: user.Username,
			TotalXP:  user.TotalXP,
			Level:    user.Level(),
		})
	}

	if cacheable {
		stored, err := uc.cache.Set(ctx, epoch, entries)
		switch {
		case err != nil:
			uc.logger.Warn("leaderboard cache write failed", zap.Error(err))
		case !stored:
			uc.logger.Debug("leaderboard changed while computing, cache write skipped", zap.Int64("epoch", epoch))
		}
	}
	return entries, nil
}
