package repository

import (
	"context"

	"github.com/fastygo/urquest/domain"
)

type OrganizationRepository interface {
	// Create stores the organization and makes the owner a member in the
	// same transaction.
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id int64) (*domain.Organization, error)
	GetByOwner(ctx context.Context, ownerID string) (*domain.Organization, error)
	UpdateProfile(ctx context.Context, org *domain.Organization) error
	// TransferOwnership moves ownership to a current member of the organization.
	TransferOwnership(ctx context.Context, orgID int64, newOwnerID string) error
	Stats(ctx context.Context, orgID int64) (domain.OrgStats, error)
}

type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
	ListByOrg(ctx context.Context, orgID int64) ([]domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	// Delete removes the role and clears it from every member holding it.
	Delete(ctx context.Context, id int64) error
	// Assign sets (or clears, when roleID is nil) the role of a member. The
	// member must belong to orgID and the role must be scoped to orgID.
	Assign(ctx context.Context, orgID int64, userID string, roleID *int64) error
}
