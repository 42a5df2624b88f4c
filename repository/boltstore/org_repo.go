package boltstore

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/infrastructure/boltdb"
	"github.com/fastygo/urquest/repository"
)

type organizationRepository struct {
	db *bolt.DB
}

// NewOrganizationRepository creates a bolt-backed organization repository.
func NewOrganizationRepository(db *bolt.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if org == nil || org.Name == "" || org.OwnerID == "" {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		orgs := tx.Bucket(boltdb.BucketOrgs)
		names := tx.Bucket(boltdb.BucketOrgNames)
		owners := tx.Bucket(boltdb.BucketOrgOwners)

		owner, err := loadUser(tx, org.OwnerID)
		if err != nil {
			return err
		}
		if owners.Get([]byte(owner.ID)) != nil {
			return domain.ErrAlreadyOwnsOrg
		}
		if owner.OrgID != nil {
			return domain.ErrAlreadyMember
		}
		if names.Get([]byte(org.Name)) != nil {
			return domain.ErrOrgNameTaken
		}

		id, err := nextID(orgs)
		if err != nil {
			return err
		}
		org.ID = id
		if org.CreatedAt.IsZero() {
			org.CreatedAt = time.Now().UTC()
		}
		if err := put(orgs, itob(id), org); err != nil {
			return err
		}
		if err := names.Put([]byte(org.Name), itob(id)); err != nil {
			return err
		}
		if err := owners.Put([]byte(owner.ID), itob(id)); err != nil {
			return err
		}

		owner.OrgID = &id
		owner.RoleID = nil
		return saveUser(tx, owner)
	})
}

func (r *organizationRepository) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var org *domain.Organization
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		org, err = loadOrg(tx, id)
		return err
	})
	return org, err
}

func (r *organizationRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var org *domain.Organization
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(boltdb.BucketOrgOwners).Get([]byte(ownerID))
		if id == nil {
			return domain.ErrOrganizationNotFound
		}
		var err error
		org, err = loadOrg(tx, btoi(id))
		return err
	})
	return org, err
}

func (r *organizationRepository) UpdateProfile(ctx context.Context, org *domain.Organization) error {
	if org == nil {
		return domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		current, err := loadOrg(tx, org.ID)
		if err != nil {
			return err
		}
		current.Description = org.Description
		current.ImageURL = org.ImageURL
		if err := put(tx.Bucket(boltdb.BucketOrgs), itob(current.ID), current); err != nil {
			return err
		}
		*org = *current
		return nil
	})
}

func (r *organizationRepository) TransferOwnership(ctx context.Context, orgID int64, newOwnerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		owners := tx.Bucket(boltdb.BucketOrgOwners)

		org, err := loadOrg(tx, orgID)
		if err != nil {
			return err
		}
		next, err := loadUser(tx, newOwnerID)
		if err != nil {
			return err
		}
		if !next.IsMemberOf(orgID) {
			return domain.NewError(domain.ErrCodeInvalid, "new owner must be a member of the organization")
		}
		if org.OwnerID == next.ID {
			return nil
		}
		if owners.Get([]byte(next.ID)) != nil {
			return domain.ErrAlreadyOwnsOrg
		}

		if err := owners.Delete([]byte(org.OwnerID)); err != nil {
			return err
		}
		if err := owners.Put([]byte(next.ID), itob(orgID)); err != nil {
			return err
		}
		org.OwnerID = next.ID
		return put(tx.Bucket(boltdb.BucketOrgs), itob(orgID), org)
	})
}

func (r *organizationRepository) Stats(ctx context.Context, orgID int64) (domain.OrgStats, error) {
	stats := domain.OrgStats{OrgID: orgID}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	err := r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(boltdb.BucketOrgs).Get(itob(orgID)) == nil {
			return domain.ErrOrganizationNotFound
		}
		orgTasks := make(map[int64]struct{})
		err := tx.Bucket(boltdb.BucketTasks).ForEach(func(_, v []byte) error {
			var task domain.Task
			if err := unmarshal(v, &task); err != nil {
				return err
			}
			if task.OrgID != orgID {
				return nil
			}
			orgTasks[task.ID] = struct{}{}
			if task.IsOpen() {
				stats.ActiveTasks++
			}
			return nil
		})
		if err != nil {
			return err
		}
		return tx.Bucket(boltdb.BucketSubmissions).ForEach(func(_, v []byte) error {
			var sub domain.Submission
			if err := unmarshal(v, &sub); err != nil {
				return err
			}
			if _, ok := orgTasks[sub.TaskID]; ok && sub.Status == domain.SubmissionPending {
				stats.PendingSubmissions++
			}
			return nil
		})
	})
	return stats, err
}

func loadOrg(tx *bolt.Tx, id int64) (*domain.Organization, error) {
	var org domain.Organization
	ok, err := get(tx.Bucket(boltdb.BucketOrgs), itob(id), &org)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrOrganizationNotFound
	}
	return &org, nil
}
