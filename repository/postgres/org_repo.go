package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

const orgColumns = `id, name, owner_id, description, image_url, created_at`

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository returns a Postgres-backed organization repository.
func NewOrganizationRepository(pool *pgxpool.Pool) repository.OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if org == nil || org.Name == "" || org.OwnerID == "" {
		return domain.ErrInvalidPayload
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		owner, err := getUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, org.OwnerID)
		if err != nil {
			return err
		}
		if owner.OrgID != nil {
			var owns bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM organizations WHERE owner_id = $1)`, owner.ID).Scan(&owns); err != nil {
				return err
			}
			if owns {
				return domain.ErrAlreadyOwnsOrg
			}
			return domain.ErrAlreadyMember
		}

		const insert = `
		INSERT INTO organizations (name, owner_id, description, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
		`
		if err := tx.QueryRow(ctx, insert, org.Name, org.OwnerID, org.Description, org.ImageURL).Scan(&org.ID, &org.CreatedAt); err != nil {
			switch {
			case isUniqueViolation(err, "organizations_name_key"):
				return domain.ErrOrgNameTaken
			case isUniqueViolation(err, "organizations_owner_id_key"):
				return domain.ErrAlreadyOwnsOrg
			}
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE users SET org_id = $2, role_id = NULL WHERE id = $1`, owner.ID, org.ID)
		return err
	})
}

func (r *organizationRepository) GetByID(ctx context.Context, id int64) (*domain.Organization, error) {
	return getOrg(ctx, r.pool, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
}

func (r *organizationRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Organization, error) {
	return getOrg(ctx, r.pool, `SELECT `+orgColumns+` FROM organizations WHERE owner_id = $1`, ownerID)
}

func (r *organizationRepository) UpdateProfile(ctx context.Context, org *domain.Organization) error {
	if org == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE organizations
	SET description = $2,
		image_url = $3
	WHERE id = $1
	RETURNING ` + orgColumns
	updated, err := getOrg(ctx, r.pool, query, org.ID, org.Description, org.ImageURL)
	if err != nil {
		return err
	}
	*org = *updated
	return nil
}

func (r *organizationRepository) TransferOwnership(ctx context.Context, orgID int64, newOwnerID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		org, err := getOrg(ctx, tx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1 FOR UPDATE`, orgID)
		if err != nil {
			return err
		}
		next, err := getUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR SHARE`, newOwnerID)
		if err != nil {
			return err
		}
		if !next.IsMemberOf(orgID) {
			return domain.NewError(domain.ErrCodeInvalid, "new owner must be a member of the organization")
		}
		if org.OwnerID == next.ID {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE organizations SET owner_id = $2 WHERE id = $1`, orgID, next.ID); err != nil {
			if isUniqueViolation(err, "organizations_owner_id_key") {
				return domain.ErrAlreadyOwnsOrg
			}
			return err
		}
		return nil
	})
}

func (r *organizationRepository) Stats(ctx context.Context, orgID int64) (domain.OrgStats, error) {
	stats := domain.OrgStats{OrgID: orgID}
	const query = `
	SELECT
		(SELECT COUNT(*) FROM tasks WHERE org_id = o.id AND status = 'OPEN'),
		(SELECT COUNT(*) FROM submissions s
			JOIN tasks t ON t.id = s.task_id
			WHERE t.org_id = o.id AND s.status = 'PENDING')
	FROM organizations o
	WHERE o.id = $1
	`
	if err := r.pool.QueryRow(ctx, query, orgID).Scan(&stats.ActiveTasks, &stats.PendingSubmissions); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats, domain.ErrOrganizationNotFound
		}
		return stats, err
	}
	return stats, nil
}

func getOrg(ctx context.Context, q querier, query string, args ...interface{}) (*domain.Organization, error) {
	var org domain.Organization
	if err := q.QueryRow(ctx, query, args...).Scan(
		&org.ID,
		&org.Name,
		&org.OwnerID,
		&org.Description,
		&org.ImageURL,
		&org.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}
