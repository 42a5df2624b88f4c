// Package testutil builds throwaway stores for use case tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/internal/infrastructure/boltdb"
	"github.com/fastygo/urquest/repository"
	"github.com/fastygo/urquest/repository/boltstore"
)

// NewStore opens a bolt-backed store in a temp dir that is closed with the test.
func NewStore(t testing.TB) *repository.Store {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "urquest.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	store := boltstore.NewStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// User creates a user named username.
func User(t testing.TB, store *repository.Store, username string) *domain.User {
	t.Helper()
	user := &domain.User{ID: domain.UserIDFromUsername(username), Username: username, PasswordHash: "x"}
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// Org creates an organization owned by ownerID.
func Org(t testing.TB, store *repository.Store, ownerID, name string) *domain.Organization {
	t.Helper()
	org := &domain.Organization{Name: name, OwnerID: ownerID}
	if err := store.Organizations.Create(context.Background(), org); err != nil {
		t.Fatalf("create org %s: %v", name, err)
	}
	return org
}

// Role creates a role in orgID and assigns it to each member.
func Role(t testing.TB, store *repository.Store, orgID int64, name string, canCreate bool, members ...string) *domain.Role {
	t.Helper()
	ctx := context.Background()
	role := &domain.Role{OrgID: orgID, Name: name, CanCreateTask: canCreate}
	if err := store.Roles.Create(ctx, role); err != nil {
		t.Fatalf("create role %s: %v", name, err)
	}
	for _, member := range members {
		if err := store.Roles.Assign(ctx, orgID, member, &role.ID); err != nil {
			t.Fatalf("assign role %s to %s: %v", name, member, err)
		}
	}
	return role
}

// Task posts an open task worth xp.
func Task(t testing.TB, store *repository.Store, orgID int64, title string, xp int64) *domain.Task {
	t.Helper()
	task := &domain.Task{OrgID: orgID, Title: title, XPReward: xp, Difficulty: domain.DifficultyEasy}
	if err := store.Tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}
