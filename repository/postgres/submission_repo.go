package postgres

import (
	"context"
	"errors"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

const submissionColumns = `id, task_id, user_id, proof_ref, status, feedback, created_at, reviewed_at`

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository returns a Postgres-backed submission repository.
func NewSubmissionRepository(pool *pgxpool.Pool) repository.SubmissionRepository {
	return &submissionRepository{pool: pool}
}

func (r *submissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	if sub == nil || sub.UserID == "" {
		return domain.ErrInvalidPayload
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		if err := tx.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1 FOR SHARE`, sub.TaskID).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return err
		}
		if domain.TaskStatus(status) != domain.TaskOpen {
			return domain.ErrTaskNotOpen
		}

		// The unique constraint decides races between concurrent submits.
		const insert = `
		INSERT INTO submissions (task_id, user_id, proof_ref, status)
		VALUES ($1, $2, $3, 'PENDING')
		ON CONFLICT ON CONSTRAINT submissions_task_user_key DO NOTHING
		RETURNING ` + submissionColumns
		created, err := scanSubmission(tx.QueryRow(ctx, insert, sub.TaskID, sub.UserID, sub.ProofRef))
		if err != nil {
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				return domain.ErrDuplicateSubmission
			case isForeignKeyViolation(err, ""):
				return domain.ErrUserNotFound
			}
			return err
		}
		*sub = *created
		return nil
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	sub, err := scanSubmission(r.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepository) ListPendingByOrg(ctx context.Context, orgID int64) iter.Seq2[domain.ReviewItem, error] {
	const query = `
	SELECT s.id, t.id, t.title, t.xp_reward, u.id, u.username, s.proof_ref, s.created_at
	FROM submissions s
	JOIN tasks t ON t.id = s.task_id
	JOIN users u ON u.id = s.user_id
	WHERE t.org_id = $1 AND s.status = 'PENDING'
	ORDER BY s.id
	`
	return func(yield func(domain.ReviewItem, error) bool) {
		rows, err := r.pool.Query(ctx, query, orgID)
		if err != nil {
			yield(domain.ReviewItem{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var item domain.ReviewItem
			if err := rows.Scan(
				&item.SubmissionID,
				&item.TaskID,
				&item.TaskTitle,
				&item.XPReward,
				&item.SubmitterID,
				&item.SubmitterName,
				&item.ProofRef,
				&item.SubmittedAt,
			); err != nil {
				yield(domain.ReviewItem{}, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.ReviewItem{}, err)
		}
	}
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	const query = `
	SELECT s.id, t.id, t.title, s.status, s.feedback, t.xp_reward
	FROM submissions s
	JOIN tasks t ON t.id = s.task_id
	WHERE s.user_id = $1
	ORDER BY s.id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.HistoryEntry
	for rows.Next() {
		var (
			entry  domain.HistoryEntry
			status string
		)
		if err := rows.Scan(&entry.SubmissionID, &entry.TaskID, &entry.TaskTitle, &status, &entry.Feedback, &entry.XPReward); err != nil {
			return nil, err
		}
		entry.Status = domain.SubmissionStatus(status)
		history = append(history, entry)
	}
	return history, rows.Err()
}

// Review runs the status compare-and-swap and the XP credit in one
// transaction. A concurrent reviewer blocks on the row lock and then finds the
// row no longer PENDING.
func (r *submissionRepository) Review(ctx context.Context, id int64, decision domain.Decision, feedback string) (*domain.Submission, error) {
	var reviewed *domain.Submission
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const transition = `
		UPDATE submissions
		SET status = $2,
			feedback = $3,
			reviewed_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + submissionColumns
		sub, err := scanSubmission(tx.QueryRow(ctx, transition, id, string(decision.Outcome()), feedback))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return domain.ErrSubmissionNotPending
			}
			return domain.ErrSubmissionNotFound
		}

		if sub.Status == domain.SubmissionApproved {
			const ledger = `
			SELECT u.total_xp, t.xp_reward
			FROM users u, tasks t
			WHERE u.id = $1 AND t.id = $2
			FOR UPDATE OF u
			`
			var total, reward int64
			if err := tx.QueryRow(ctx, ledger, sub.UserID, sub.TaskID).Scan(&total, &reward); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domain.WrapError(domain.ErrCodeInternal, "xp credit failed", domain.ErrUserNotFound)
				}
				return err
			}
			credited, err := domain.CreditXP(total, reward)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `UPDATE users SET total_xp = $2 WHERE id = $1`, sub.UserID, credited); err != nil {
				return err
			}
		}
		reviewed = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

func scanSubmission(row scanner) (*domain.Submission, error) {
	var (
		sub    domain.Submission
		status string
	)
	if err := row.Scan(
		&sub.ID,
		&sub.TaskID,
		&sub.UserID,
		&sub.ProofRef,
		&status,
		&sub.Feedback,
		&sub.CreatedAt,
		&sub.ReviewedAt,
	); err != nil {
		return nil, err
	}
	sub.Status = domain.SubmissionStatus(status)
	return &sub, nil
}
