package boltstore

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/urquest/internal/infrastructure/boltdb"
	"github.com/fastygo/urquest/repository"
)

// NewStore wires every bolt repository onto one database handle. Closing the
// store closes the handle.
func NewStore(db *bolt.DB) *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(db),
		Organizations: NewOrganizationRepository(db),
		Roles:         NewRoleRepository(db),
		Tasks:         NewTaskRepository(db),
		Submissions:   NewSubmissionRepository(db),
		Name:          "bolt",
		Ping: func(context.Context) error {
			return boltdb.Ping(db)
		},
		Close: db.Close,
	}
}
