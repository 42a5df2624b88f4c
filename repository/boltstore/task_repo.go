package boltstore

import (
	"context"
	"iter"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/infrastructure/boltdb"
	"github.com/fastygo/urquest/repository"
)

type taskRepository struct {
	db *bolt.DB
}

// NewTaskRepository returns a bolt-backed implementation of TaskRepository.
func NewTaskRepository(db *bolt.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		if _, err := loadOrg(tx, task.OrgID); err != nil {
			return err
		}
		tasks := tx.Bucket(boltdb.BucketTasks)
		id, err := nextID(tasks)
		if err != nil {
			return err
		}
		task.ID = id
		if task.Status == "" {
			task.Status = domain.TaskOpen
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = time.Now().UTC()
		}
		return put(tasks, itob(id), task)
	})
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task *domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		task, err = loadTask(tx, id)
		return err
	})
	return task, err
}

func (r *taskRepository) ListOpen(ctx context.Context) iter.Seq2[domain.TaskSummary, error] {
	return func(yield func(domain.TaskSummary, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.TaskSummary{}, err)
			return
		}
		// Rows are copied out before yielding so callers may write to the
		// store while ranging.
		var open []domain.TaskSummary
		err := r.db.View(func(tx *bolt.Tx) error {
			orgNames := make(map[int64]string)
			return tx.Bucket(boltdb.BucketTasks).ForEach(func(_, v []byte) error {
				var task domain.Task
				if err := unmarshal(v, &task); err != nil {
					return err
				}
				if !task.IsOpen() {
					return nil
				}
				name, ok := orgNames[task.OrgID]
				if !ok {
					org, err := loadOrg(tx, task.OrgID)
					if err != nil {
						return err
					}
					name = org.Name
					orgNames[task.OrgID] = name
				}
				open = append(open, domain.TaskSummary{Task: task, OrgName: name})
				return nil
			})
		})
		if err != nil {
			yield(domain.TaskSummary{}, err)
			return
		}
		for _, summary := range open {
			if !yield(summary, nil) {
				return
			}
		}
	}
}

func loadTask(tx *bolt.Tx, id int64) (*domain.Task, error) {
	var task domain.Task
	ok, err := get(tx.Bucket(boltdb.BucketTasks), itob(id), &task)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}
