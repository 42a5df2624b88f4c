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

type roleRepository struct {
	db *bolt.DB
}

// NewRoleRepository creates a bolt-backed role repository.
func NewRoleRepository(db *bolt.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	if role == nil || role.Name == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		if _, err := loadOrg(tx, role.OrgID); err != nil {
			return err
		}
		roles := tx.Bucket(boltdb.BucketRoles)
		id, err := nextID(roles)
		if err != nil {
			return err
		}
		role.ID = id
		if role.CreatedAt.IsZero() {
			role.CreatedAt = time.Now().UTC()
		}
		return put(roles, itob(id), role)
	})
}

func (r *roleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var role *domain.Role
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		role, err = loadRole(tx, id)
		return err
	})
	return role, err
}

func (r *roleRepository) ListByOrg(ctx context.Context, orgID int64) ([]domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var roles []domain.Role
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketRoles).ForEach(func(_, v []byte) error {
			var role domain.Role
			if err := unmarshal(v, &role); err != nil {
				return err
			}
			if role.OrgID == orgID {
				roles = append(roles, role)
			}
			return nil
		})
	})
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].Rank < roles[j].Rank })
	return roles, err
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	if role == nil || role.Name == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		current, err := loadRole(tx, role.ID)
		if err != nil {
			return err
		}
		current.Name = role.Name
		current.Rank = role.Rank
		current.CanCreateTask = role.CanCreateTask
		if err := put(tx.Bucket(boltdb.BucketRoles), itob(current.ID), current); err != nil {
			return err
		}
		*role = *current
		return nil
	})
}

func (r *roleRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		if _, err := loadRole(tx, id); err != nil {
			return err
		}
		var holders []domain.User
		err := forEachUser(tx, func(u domain.User) {
			if u.RoleID != nil && *u.RoleID == id {
				holders = append(holders, u)
			}
		})
		if err != nil {
			return err
		}
		for i := range holders {
			holders[i].RoleID = nil
			if err := saveUser(tx, &holders[i]); err != nil {
				return err
			}
		}
		return tx.Bucket(boltdb.BucketRoles).Delete(itob(id))
	})
}

func (r *roleRepository) Assign(ctx context.Context, orgID int64, userID string, roleID *int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if !user.IsMemberOf(orgID) {
			return domain.NewError(domain.ErrCodeInvalid, "user is not a member of the organization")
		}
		if roleID != nil {
			role, err := loadRole(tx, *roleID)
			if err != nil {
				return err
			}
			if !role.BelongsTo(orgID) {
				return domain.NewError(domain.ErrCodeInvalid, "role belongs to another organization")
			}
			id := role.ID
			roleID = &id
		}
		user.RoleID = roleID
		return saveUser(tx, user)
	})
}

func loadRole(tx *bolt.Tx, id int64) (*domain.Role, error) {
	var role domain.Role
	ok, err := get(tx.Bucket(boltdb.BucketRoles), itob(id), &role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}
