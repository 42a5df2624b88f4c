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

type submissionRepository struct {
	db *bolt.DB
}

// NewSubmissionRepository creates a bolt-backed submission repository. Bolt
// allows a single writer at a time, so every Update below is serialized
// against any other write to the store.
func NewSubmissionRepository(db *bolt.DB) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	if sub == nil || sub.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		task, err := loadTask(tx, sub.TaskID)
		if err != nil {
			return err
		}
		if !task.IsOpen() {
			return domain.ErrTaskNotOpen
		}
		if _, err := loadUser(tx, sub.UserID); err != nil {
			return err
		}

		keys := tx.Bucket(boltdb.BucketSubmissionKeys)
		key := submissionKey(sub.TaskID, sub.UserID)
		if keys.Get(key) != nil {
			return domain.ErrDuplicateSubmission
		}

		subs := tx.Bucket(boltdb.BucketSubmissions)
		id, err := nextID(subs)
		if err != nil {
			return err
		}
		sub.ID = id
		sub.Status = domain.SubmissionPending
		sub.Feedback = ""
		sub.ReviewedAt = nil
		if sub.CreatedAt.IsZero() {
			sub.CreatedAt = time.Now().UTC()
		}
		if err := put(subs, itob(id), sub); err != nil {
			return err
		}
		return keys.Put(key, itob(id))
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var sub *domain.Submission
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		sub, err = loadSubmission(tx, id)
		return err
	})
	return sub, err
}

func (r *submissionRepository) ListPendingByOrg(ctx context.Context, orgID int64) iter.Seq2[domain.ReviewItem, error] {
	return func(yield func(domain.ReviewItem, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.ReviewItem{}, err)
			return
		}
		var items []domain.ReviewItem
		err := r.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(boltdb.BucketSubmissions).ForEach(func(_, v []byte) error {
				var sub domain.Submission
				if err := unmarshal(v, &sub); err != nil {
					return err
				}
				if sub.Status != domain.SubmissionPending {
					return nil
				}
				task, err := loadTask(tx, sub.TaskID)
				if err != nil {
					return err
				}
				if task.OrgID != orgID {
					return nil
				}
				user, err := loadUser(tx, sub.UserID)
				if err != nil {
					return err
				}
				items = append(items, domain.ReviewItem{
					SubmissionID:  sub.ID,
					TaskID:        task.ID,
					TaskTitle:     task.Title,
					XPReward:      task.XPReward,
					SubmitterID:   user.ID,
					SubmitterName: user.Username,
					ProofRef:      sub.ProofRef,
					SubmittedAt:   sub.CreatedAt,
				})
				return nil
			})
		})
		if err != nil {
			yield(domain.ReviewItem{}, err)
			return
		}
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var history []domain.HistoryEntry
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketSubmissions).ForEach(func(_, v []byte) error {
			var sub domain.Submission
			if err := unmarshal(v, &sub); err != nil {
				return err
			}
			if sub.UserID != userID {
				return nil
			}
			task, err := loadTask(tx, sub.TaskID)
			if err != nil {
				return err
			}
			history = append(history, domain.HistoryEntry{
				SubmissionID: sub.ID,
				TaskID:       task.ID,
				TaskTitle:    task.Title,
				Status:       sub.Status,
				Feedback:     sub.Feedback,
				XPReward:     task.XPReward,
			})
			return nil
		})
	})
	return history, err
}

func (r *submissionRepository) Review(ctx context.Context, id int64, decision domain.Decision, feedback string) (*domain.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var reviewed *domain.Submission
	err := r.db.Update(func(tx *bolt.Tx) error {
		sub, err := loadSubmission(tx, id)
		if err != nil {
			return err
		}
		if err := sub.Transition(decision, feedback, time.Now().UTC()); err != nil {
			return err
		}

		if sub.Status == domain.SubmissionApproved {
			task, err := loadTask(tx, sub.TaskID)
			if err != nil {
				return err
			}
			user, err := loadUser(tx, sub.UserID)
			if err != nil {
				return err
			}
			if user.TotalXP, err = domain.CreditXP(user.TotalXP, task.XPReward); err != nil {
				return err
			}
			if err := saveUser(tx, user); err != nil {
				return err
			}
		}

		if err := put(tx.Bucket(boltdb.BucketSubmissions), itob(sub.ID), sub); err != nil {
			return err
		}
		reviewed = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

func loadSubmission(tx *bolt.Tx, id int64) (*domain.Submission, error) {
	var sub domain.Submission
	ok, err := get(tx.Bucket(boltdb.BucketSubmissions), itob(id), &sub)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	return &sub, nil
}
