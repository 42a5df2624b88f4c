package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/urquest/repository"
)

// NewStore wires every Postgres repository onto one pool. Closing the store
// closes the pool.
func NewStore(pool *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(pool),
		Organizations: NewOrganizationRepository(pool),
		Roles:         NewRoleRepository(pool),
		Tasks:         NewTaskRepository(pool),
		Submissions:   NewSubmissionRepository(pool),
		Name:          "postgresql",
		Ping:          pool.Ping,
		Close: func() error {
			pool.Close()
			return nil
		},
	}
}
