package org

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
	"github.com/fastygo/urquest/usecase/access"
)

type UseCase struct {
	users  repository.UserRepository
	orgs   repository.OrganizationRepository
	roles  repository.RoleRepository
	access *access.Evaluator
	logger *zap.Logger
}

func New(
	users repository.UserRepository,
	orgs repository.OrganizationRepository,
	roles repository.RoleRepository,
	evaluator *access.Evaluator,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		orgs:   orgs,
		roles:  roles,
		access: evaluator,
		logger: logger,
	}
}

// CreateOrganization registers a new organization owned by ownerID. The
// owner becomes its first member.
func (uc *UseCase) CreateOrganization(ctx context.Context, ownerID, name, description, imageURL string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "organization name is required")
	}
	org := &domain.Organization{
		Name:        name,
		OwnerID:     ownerID,
		Description: strings.TrimSpace(description),
		ImageURL:    strings.TrimSpace(imageURL),
	}
	if err := uc.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	uc.logger.Info("organization created", zap.Int64("org_id", org.ID), zap.String("owner_id", ownerID))
	return org, nil
}

func (uc *UseCase) GetOrganization(ctx context.Context, orgID int64) (*domain.Organization, error) {
	return uc.orgs.GetByID(ctx, orgID)
}

// UpdateOrganization changes the descriptive fields. Nil leaves a field as is.
func (uc *UseCase) UpdateOrganization(ctx context.Context, actorID string, orgID int64, description, imageURL *string) (*domain.Organization, error) {
	org, err := uc.access.RequireOwner(ctx, actorID, orgID)
	if err != nil {
		return nil, err
	}
	if description != nil {
		org.Description = strings.TrimSpace(*description)
	}
	if imageURL != nil {
		org.ImageURL = strings.TrimSpace(*imageURL)
	}
	if err := uc.orgs.UpdateProfile(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// TransferOwnership hands the organization to another current member.
func (uc *UseCase) TransferOwnership(ctx context.Context, actorID string, orgID int64, newOwnerID string) error {
	if _, err := uc.access.RequireOwner(ctx, actorID, orgID); err != nil {
		return err
	}
	if newOwnerID == "" || newOwnerID == actorID {
		return domain.NewError(domain.ErrCodeInvalid, "new owner must be another member")
	}
	if err := uc.orgs.TransferOwnership(ctx, orgID, newOwnerID); err != nil {
		return err
	}
	uc.logger.Info("organization ownership transferred",
		zap.Int64("org_id", orgID),
		zap.String("from", actorID),
		zap.String("to", newOwnerID),
	)
	return nil
}

func (uc *UseCase) Join(ctx context.Context, userID string, orgID int64) error {
	if err := uc.users.Join(ctx, userID, orgID); err != nil {
		return err
	}
	uc.logger.Info("member joined", zap.Int64("org_id", orgID), zap.String("user_id", userID))
	return nil
}

// Leave drops the user's membership and role. Owners must transfer first.
func (uc *UseCase) Leave(ctx context.Context, userID string) error {
	if err := uc.users.Leave(ctx, userID); err != nil {
		return err
	}
	uc.logger.Info("member left", zap.String("user_id", userID))
	return nil
}

// LeaveOrganization is Leave for a caller naming the organization they leave.
func (uc *UseCase) LeaveOrganization(ctx context.Context, userID string, orgID int64) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsMemberOf(orgID) {
		return domain.NewError(domain.ErrCodeInvalid, "user is not a member of the organization")
	}
	return uc.Leave(ctx, userID)
}

func (uc *UseCase) Members(ctx context.Context, orgID int64) ([]domain.User, error) {
	if _, err := uc.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return uc.users.ListByOrg(ctx, orgID)
}

func (uc *UseCase) Stats(ctx context.Context, orgID int64) (domain.OrgStats, error) {
	return uc.orgs.Stats(ctx, orgID)
}
