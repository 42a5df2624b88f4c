package repository

import "context"

// Store bundles the repositories of one storage backend together with its
// lifecycle.
type Store struct {
	Users         UserRepository
	Organizations OrganizationRepository
	Roles         RoleRepository
	Tasks         TaskRepository
	Submissions   SubmissionRepository

	// Name identifies the backend in health output.
	Name  string
	Ping  func(ctx context.Context) error
	Close func() error
}
