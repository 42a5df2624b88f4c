package repository

import (
	"context"
	"iter"

	"github.com/fastygo/urquest/domain"
)

type SubmissionRepository interface {
	// Create inserts a PENDING submission. A second submission for the same
	// (task, user) pair fails with domain.ErrDuplicateSubmission.
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id int64) (*domain.Submission, error)
	ListPendingByOrg(ctx context.Context, orgID int64) iter.Seq2[domain.ReviewItem, error]
	ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
	// Review atomically moves a PENDING submission to its terminal state and,
	// on approval, credits the task's XP to the submitter. Non-pending
	// submissions fail with domain.ErrSubmissionNotPending and change nothing.
	Review(ctx context.Context, id int64, decision domain.Decision, feedback string) (*domain.Submission, error)
}
