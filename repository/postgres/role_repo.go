package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

const roleColumns = `id, org_id, name, rank, can_create_task, created_at`

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed role repository.
func NewRoleRepository(pool *pgxpool.Pool) repository.RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	if role == nil || role.Name == "" {
		return domain.ErrInvalidPayload
	}
	const query = `
	INSERT INTO roles (org_id, name, rank, can_create_task)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query, role.OrgID, role.Name, role.Rank, role.CanCreateTask).Scan(&role.ID, &role.CreatedAt); err != nil {
		if isForeignKeyViolation(err, "") {
			return domain.ErrOrganizationNotFound
		}
		return err
	}
	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	return getRole(ctx, r.pool, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

func (r *roleRepository) ListByOrg(ctx context.Context, orgID int64) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles WHERE org_id = $1 ORDER BY rank, id`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	if role == nil || role.Name == "" {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE roles
	SET name = $2,
		rank = $3,
		can_create_task = $4
	WHERE id = $1
	RETURNING ` + roleColumns
	updated, err := getRole(ctx, r.pool, query, role.ID, role.Name, role.Rank, role.CanCreateTask)
	if err != nil {
		return err
	}
	*role = *updated
	return nil
}

func (r *roleRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE users SET role_id = NULL WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrRoleNotFound
		}
		return nil
	})
}

func (r *roleRepository) Assign(ctx context.Context, orgID int64, userID string, roleID *int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		user, err := getUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
		if err != nil {
			return err
		}
		if !user.IsMemberOf(orgID) {
			return domain.NewError(domain.ErrCodeInvalid, "user is not a member of the organization")
		}
		if roleID != nil {
			role, err := getRole(ctx, tx, `SELECT `+roleColumns+` FROM roles WHERE id = $1 FOR SHARE`, *roleID)
			if err != nil {
				return err
			}
			if !role.BelongsTo(orgID) {
				return domain.NewError(domain.ErrCodeInvalid, "role belongs to another organization")
			}
		}
		_, err = tx.Exec(ctx, `UPDATE users SET role_id = $2 WHERE id = $1`, userID, roleID)
		return err
	})
}

func getRole(ctx context.Context, q querier, query string, args ...interface{}) (*domain.Role, error) {
	role, err := scanRole(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

func scanRole(row scanner) (*domain.Role, error) {
	var role domain.Role
	if err := row.Scan(&role.ID, &role.OrgID, &role.Name, &role.Rank, &role.CanCreateTask, &role.CreatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}
