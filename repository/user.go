package repository

import (
	"context"

	"github.com/fastygo/urquest/domain"
)

// UserRepository is the identity and membership store. XP is never written
// here; it changes only through SubmissionRepository.Review.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Join sets the user's membership to orgID with no role. It fails with
	// ErrAlreadyMember when the user belongs to any organization.
	Join(ctx context.Context, userID string, orgID int64) error
	// Leave clears membership and role together.
	Leave(ctx context.Context, userID string) error
	ListByOrg(ctx context.Context, orgID int64) ([]domain.User, error)
	Top(ctx context.Context, limit int) ([]domain.User, error)
	CountWithXPAbove(ctx context.Context, xp int64) (int, error)
}
