package postgres

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

const taskColumns = `t.id, t.org_id, t.title, t.description, t.xp_reward, t.difficulty, t.deadline, t.status, t.created_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if task.Status == "" {
		task.Status = domain.TaskOpen
	}

	const query = `
	INSERT INTO tasks (org_id, title, description, xp_reward, difficulty, deadline, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.OrgID,
		task.Title,
		task.Description,
		task.XPReward,
		string(task.Difficulty),
		nullDate(task.Deadline),
		string(task.Status),
	).Scan(&task.ID, &task.CreatedAt); err != nil {
		if isForeignKeyViolation(err, "") {
			return domain.ErrOrganizationNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = $1`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) ListOpen(ctx context.Context) iter.Seq2[domain.TaskSummary, error] {
	const query = `
	SELECT ` + taskColumns + `, o.name
	FROM tasks t
	JOIN organizations o ON o.id = t.org_id
	WHERE t.status = 'OPEN'
	ORDER BY t.id
	`
	return func(yield func(domain.TaskSummary, error) bool) {
		rows, err := r.pool.Query(ctx, query)
		if err != nil {
			yield(domain.TaskSummary{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var orgName string
			task, err := scanTask(rows, &orgName)
			if err != nil {
				yield(domain.TaskSummary{}, err)
				return
			}
			if !yield(domain.TaskSummary{Task: *task, OrgName: orgName}, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.TaskSummary{}, err)
		}
	}
}

func scanTask(row scanner, extra ...interface{}) (*domain.Task, error) {
	var (
		task       domain.Task
		difficulty string
		status     string
		deadline   *time.Time
	)
	dest := []interface{}{
		&task.ID,
		&task.OrgID,
		&task.Title,
		&task.Description,
		&task.XPReward,
		&difficulty,
		&deadline,
		&status,
		&task.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	task.Difficulty = domain.Difficulty(difficulty)
	task.Status = domain.TaskStatus(status)
	task.Deadline = deadline
	return &task, nil
}
