package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/repository"
)

const userColumns = `id, username, password_hash, total_xp, org_id, role_id, created_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" || user.Username == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (id, username, password_hash, total_xp)
	VALUES ($1, $2, $3, 0)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query, user.ID, user.Username, user.PasswordHash).Scan(&user.CreatedAt); err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrUsernameTaken
		}
		return err
	}
	user.TotalXP = 0
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return getUser(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return getUser(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) Join(ctx context.Context, userID string, orgID int64) error {
	const query = `
	UPDATE users
	SET org_id = $2,
		role_id = NULL
	WHERE id = $1 AND org_id IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, userID, orgID)
	if err != nil {
		if isForeignKeyViolation(err, "users_org_fk") {
			return domain.ErrOrganizationNotFound
		}
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, userID); err != nil {
		return err
	}
	return domain.ErrAlreadyMember
}

func (r *userRepository) Leave(ctx context.Context, userID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		user, err := getUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID)
		if err != nil {
			return err
		}
		if user.OrgID == nil {
			return nil
		}

		var owns bool
		const ownerQuery = `SELECT EXISTS (SELECT 1 FROM organizations WHERE id = $1 AND owner_id = $2)`
		if err := tx.QueryRow(ctx, ownerQuery, *user.OrgID, userID).Scan(&owns); err != nil {
			return err
		}
		if owns {
			return domain.ErrOwnerCannotLeave
		}

		_, err = tx.Exec(ctx, `UPDATE users SET org_id = NULL, role_id = NULL WHERE id = $1`, userID)
		return err
	})
}

func (r *userRepository) ListByOrg(ctx context.Context, orgID int64) ([]domain.User, error) {
	return listUsers(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE org_id = $1 ORDER BY id`, orgID)
}

func (r *userRepository) Top(ctx context.Context, limit int) ([]domain.User, error) {
	return listUsers(ctx, r.pool, `SELECT `+userColumns+` FROM users ORDER BY total_xp DESC, id ASC LIMIT $1`, clampLimit(limit))
}

func (r *userRepository) CountWithXPAbove(ctx context.Context, xp int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE total_xp > $1`, xp).Scan(&count)
	return count, err
}

func getUser(ctx context.Context, q querier, query string, args ...interface{}) (*domain.User, error) {
	user, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func listUsers(ctx context.Context, q querier, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.TotalXP,
		&user.OrgID,
		&user.RoleID,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
