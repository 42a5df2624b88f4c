package org

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/urquest/domain"
)

// RoleInput carries the editable fields of a role.
type RoleInput struct {
	Name          string
	Rank          int
	CanCreateTask bool
}

func (in RoleInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.NewError(domain.ErrCodeInvalid, "role name is required")
	}
	return nil
}

func (uc *UseCase) CreateRole(ctx context.Context, actorID string, orgID int64, in RoleInput) (*domain.Role, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := uc.access.RequireOwner(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	role := &domain.Role{
		OrgID:         orgID,
		Name:          strings.TrimSpace(in.Name),
		Rank:          in.Rank,
		CanCreateTask: in.CanCreateTask,
	}
	if err := uc.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	uc.logger.Info("role created", zap.Int64("org_id", orgID), zap.Int64("role_id", role.ID))
	return role, nil
}

func (uc *UseCase) ListRoles(ctx context.Context, orgID int64) ([]domain.Role, error) {
	if _, err := uc.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return uc.roles.ListByOrg(ctx, orgID)
}

func (uc *UseCase) UpdateRole(ctx context.Context, actorID string, roleID int64, in RoleInput) (*domain.Role, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	role, err := uc.ownedRole(ctx, actorID, roleID)
	if err != nil {
		return nil, err
	}
	role.Name = strings.TrimSpace(in.Name)
	role.Rank = in.Rank
	role.CanCreateTask = in.CanCreateTask
	if err := uc.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole removes the role; members holding it keep their membership.
func (uc *UseCase) DeleteRole(ctx context.Context, actorID string, roleID int64) error {
	role, err := uc.ownedRole(ctx, actorID, roleID)
	if err != nil {
		return err
	}
	if err := uc.roles.Delete(ctx, role.ID); err != nil {
		return err
	}
	uc.logger.Info("role deleted", zap.Int64("org_id", role.OrgID), zap.Int64("role_id", role.ID))
	return nil
}

// AssignRole sets memberID's role in orgID, or clears it when roleID is nil.
func (uc *UseCase) AssignRole(ctx context.Context, actorID string, orgID int64, memberID string, roleID *int64) error {
	if _, err := uc.access.RequireOwner(ctx, actorID, orgID); err != nil {
		return err
	}
	if err := uc.roles.Assign(ctx, orgID, memberID, roleID); err != nil {
		return err
	}
	uc.logger.Info("role assigned",
		zap.Int64("org_id", orgID),
		zap.String("user_id", memberID),
		zap.Int64p("role_id", roleID),
	)
	return nil
}

func (uc *UseCase) ownedRole(ctx context.Context, actorID string, roleID int64) (*domain.Role, error) {
	role, err := uc.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.access.RequireOwner(ctx, actorID, role.OrgID); err != nil {
		return nil, err
	}
	return role, nil
}
