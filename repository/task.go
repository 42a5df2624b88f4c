package repository

import (
	"context"
	"iter"

	"github.com/fastygo/urquest/domain"
)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	// ListOpen yields open tasks in creation order. Each range over the
	// sequence runs a fresh read.
	ListOpen(ctx context.Context) iter.Seq2[domain.TaskSummary, error]
}
