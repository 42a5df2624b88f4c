// Package submission runs the review workflow: members submit proof for a
// task and staff approve or reject it. Approval credits XP exactly once.
package submission

import (
	"context"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
	"github.com/fastygo/urquest/usecase/access"
)

type UseCase struct {
	tasks       repository.TaskRepository
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	leaderboard repository.LeaderboardCache
	access      *access.Evaluator
	logger      *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	submissions repository.SubmissionRepository,
	leaderboard repository.LeaderboardCache,
	evaluator *access.Evaluator,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:       tasks,
		users:       users,
		submissions: submissions,
		leaderboard: leaderboard,
		access:      evaluator,
		logger:      logger,
	}
}

// Submit records userID's proof for taskID as a PENDING submission.
func (uc *UseCase) Submit(ctx context.Context, taskID int64, userID, proofRef string) (*domain.Submission, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if !task.IsOpen() {
		return nil, domain.ErrTaskNotOpen
	}
	proofRef = strings.TrimSpace(proofRef)
	if proofRef == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "proof is required")
	}

	sub := &domain.Submission{TaskID: taskID, UserID: userID, ProofRef: proofRef}
	if err := uc.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	uc.logger.Info("submission received",
		zap.Int64("submission_id", sub.ID),
		zap.Int64("task_id", taskID),
		zap.String("user_id", userID),
	)
	return sub, nil
}

// ListPendingForOrg yields the review queue of orgID, oldest first.
func (uc *UseCase) ListPendingForOrg(ctx context.Context, orgID int64) iter.Seq2[domain.ReviewItem, error] {
	return uc.submissions.ListPendingByOrg(ctx, orgID)
}

// ListPendingFor is ListPendingForOrg for a caller who must be staff of orgID.
func (uc *UseCase) ListPendingFor(ctx context.Context, actorID string, orgID int64) (iter.Seq2[domain.ReviewItem, error], error) {
	if err := uc.access.RequireReviewer(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	return uc.ListPendingForOrg(ctx, orgID), nil
}

// Review settles a PENDING submission. The status change and the XP credit
// commit together or not at all; a submission that is already settled
// fails with ErrSubmissionNotPending and nothing changes.
func (uc *UseCase) Review(ctx context.Context, submissionID int64, decision domain.Decision, feedback string) (*domain.Submission, error) {
	if decision != domain.DecisionApprove && decision != domain.DecisionReject {
		return nil, domain.Errorf(domain.ErrCodeInvalid, "decision %q must be APPROVE or REJECT", decision)
	}
	sub, err := uc.submissions.Review(ctx, submissionID, decision, strings.TrimSpace(feedback))
	if err != nil {
		return nil, err
	}
	uc.logger.Info("submission reviewed",
		zap.Int64("submission_id", sub.ID),
		zap.String("status", string(sub.Status)),
		zap.String("user_id", sub.UserID),
	)

	if sub.Status == domain.SubmissionApproved && uc.leaderboard != nil {
		if err := uc.leaderboard.Invalidate(ctx); err != nil {
			uc.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
		}
	}
	return sub, nil
}

// ReviewAs is Review for a caller who must be staff of the task's organization.
func (uc *UseCase) ReviewAs(ctx context.Context, actorID string, submissionID int64, decision domain.Decision, feedback string) (*domain.Submission, error) {
	sub, err := uc.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, sub.TaskID)
	if err != nil {
		return nil, err
	}
	if err := uc.access.RequireReviewer(ctx, actorID, task.OrgID); err != nil {
		return nil, err
	}
	return uc.Review(ctx, submissionID, decision, feedback)
}
