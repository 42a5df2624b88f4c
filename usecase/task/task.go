package task

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
	tasks  repository.TaskRepository
	access *access.Evaluator
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, evaluator *access.Evaluator, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		access: evaluator,
		logger: logger,
	}
}

// CreateTask posts task on behalf of actorID. The caller's permission is
// checked here even if the transport already did.
func (uc *UseCase) CreateTask(ctx context.Context, actorID string, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	task.Title = strings.TrimSpace(task.Title)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	allowed, err := uc.access.CanCreateTask(ctx, actorID, task.OrgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}

	task.ID = 0
	task.Status = domain.TaskOpen
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	uc.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("org_id", task.OrgID),
		zap.String("actor_id", actorID),
	)
	return task, nil
}

// ListOpenTasks yields open tasks in creation order. Ranging over the result
// again re-reads the store.
func (uc *UseCase) ListOpenTasks(ctx context.Context) iter.Seq2[domain.TaskSummary, error] {
	return uc.tasks.ListOpen(ctx)
}

func (uc *UseCase) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}
