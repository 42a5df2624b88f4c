// Package access decides what a user may do inside an organization.
package access

import (
	"context"
	"errors"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

// Evaluator answers permission questions from the identity store. It never
// writes.
type Evaluator struct {
	users repository.UserRepository
	orgs  repository.OrganizationRepository
	roles repository.RoleRepository
}

func NewEvaluator(users repository.UserRepository, orgs repository.OrganizationRepository, roles repository.RoleRepository) *Evaluator {
	return &Evaluator{users: users, orgs: orgs, roles: roles}
}

// CanCreateTask reports whether userID may post tasks for orgID: the owner
// always may; a member may when their role belongs to orgID and grants
// can_create_task. An unknown user or organization is a NotFound error.
func (e *Evaluator) CanCreateTask(ctx context.Context, userID string, orgID int64) (bool, error) {
	org, err := e.orgs.GetByID(ctx, orgID)
	if err != nil {
		return false, err
	}
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if org.IsOwner(user.ID) {
		return true, nil
	}
	if !user.IsMemberOf(orgID) || user.RoleID == nil {
		return false, nil
	}

	role, err := e.roles.GetByID(ctx, *user.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return false, nil
		}
		return false, err
	}
	return role.BelongsTo(orgID) && role.CanCreateTask, nil
}

// CanReview reports whether userID is staff of orgID. Staff are the people
// who can create tasks.
func (e *Evaluator) CanReview(ctx context.Context, userID string, orgID int64) (bool, error) {
	return e.CanCreateTask(ctx, userID, orgID)
}

// RequireOwner returns the organization when userID owns it and
// domain.ErrForbidden otherwise.
func (e *Evaluator) RequireOwner(ctx context.Context, userID string, orgID int64) (*domain.Organization, error) {
	org, err := e.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !org.IsOwner(userID) {
		return nil, domain.ErrForbidden
	}
	return org, nil
}

// RequireReviewer fails with domain.ErrForbidden unless userID is staff of orgID.
func (e *Evaluator) RequireReviewer(ctx context.Context, userID string, orgID int64) error {
	ok, err := e.CanReview(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
