package boltstore

import (
	"context"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/infrastructure/boltdb"
	"github.com/fastygo/urquest/repository"
)

type userRepository struct {
	db *bolt.DB
}

// NewUserRepository creates a bolt-backed user repository.
func NewUserRepository(db *bolt.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" || user.Username == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(boltdb.BucketUsers)
		names := tx.Bucket(boltdb.BucketUsernames)
		if users.Get([]byte(user.ID)) != nil || names.Get([]byte(user.Username)) != nil {
			return domain.ErrUsernameTaken
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}
		user.TotalXP = 0
		if err := saveUser(tx, user); err != nil {
			return err
		}
		return names.Put([]byte(user.Username), []byte(user.ID))
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user *domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(boltdb.BucketUsernames).Get([]byte(username))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, string(id))
		return err
	})
	return user, err
}

func (r *userRepository) Join(ctx context.Context, userID string, orgID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(boltdb.BucketOrgs).Get(itob(orgID)) == nil {
			return domain.ErrOrganizationNotFound
		}
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.OrgID != nil {
			return domain.ErrAlreadyMember
		}
		user.OrgID = &orgID
		user.RoleID = nil
		return saveUser(tx, user)
	})
}

func (r *userRepository) Leave(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.OrgID != nil {
			if owned := tx.Bucket(boltdb.BucketOrgOwners).Get([]byte(user.ID)); owned != nil && btoi(owned) == *user.OrgID {
				return domain.ErrOwnerCannotLeave
			}
		}
		user.ClearMembership()
		return saveUser(tx, user)
	})
}

func (r *userRepository) ListByOrg(ctx context.Context, orgID int64) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var members []domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		return forEachUser(tx, func(u domain.User) {
			if u.IsMemberOf(orgID) {
				members = append(members, u)
			}
		})
	})
	return members, err
}

func (r *userRepository) Top(ctx context.Context, limit int) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var users []domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		return forEachUser(tx, func(u domain.User) {
			users = append(users, u)
		})
	})
	if err != nil {
		return nil, err
	}
	// Keys iterate in id order, so the stable sort breaks XP ties by id.
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalXP > users[j].TotalXP
	})
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *userRepository) CountWithXPAbove(ctx context.Context, xp int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int
	err := r.db.View(func(tx *bolt.Tx) error {
		return forEachUser(tx, func(u domain.User) {
			if u.TotalXP > xp {
				count++
			}
		})
	})
	return count, err
}

// userRecord persists the credential hash that domain.User keeps out of JSON.
type userRecord struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

func (rec userRecord) user() domain.User {
	u := rec.User
	u.PasswordHash = rec.PasswordHash
	return u
}

func saveUser(tx *bolt.Tx, user *domain.User) error {
	rec := userRecord{User: *user, PasswordHash: user.PasswordHash}
	return put(tx.Bucket(boltdb.BucketUsers), []byte(user.ID), rec)
}

func loadUser(tx *bolt.Tx, id string) (*domain.User, error) {
	var rec userRecord
	ok, err := get(tx.Bucket(boltdb.BucketUsers), []byte(id), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := rec.user()
	return &user, nil
}

func forEachUser(tx *bolt.Tx, fn func(domain.User)) error {
	return tx.Bucket(boltdb.BucketUsers).ForEach(func(_, v []byte) error {
		var rec userRecord
		if err := unmarshal(v, &rec); err != nil {
			return err
		}
		fn(rec.user())
		return nil
	})
}
