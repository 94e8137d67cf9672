package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jodisatria/photofolio-api/internal/domain/entity"
	"github.com/jodisatria/photofolio-api/internal/domain/repository"
)

const userColumns = `id, name, email, password_hash, role, active,
	password_changed_at, password_reset_token, password_reset_expires,
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Active,
		&u.PasswordChangedAt, &u.PasswordResetToken, &u.PasswordResetExpires,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, active, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.Role)
	return row.Scan(&u.ID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND active
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND active
	`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE password_reset_token = $1
		  AND password_reset_expires > now()
		  AND active
	`, hash)
	return scanUser(row)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, name, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
		    email = COALESCE(NULLIF($2, ''), email),
		    updated_at = now()
		WHERE id = $3 AND active
		RETURNING `+userColumns+`
	`, name, email, id)
	return scanUser(row)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, hash string, changedAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1,
		    password_changed_at = $2,
		    password_reset_token = NULL,
		    password_reset_expires = NULL,
		    updated_at = now()
		WHERE id = $3
	`, hash, changedAt, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetResetToken is a partial save touching only the reset bookkeeping columns.
func (r *UserRepository) SetResetToken(ctx context.Context, id string, hash string, expires time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_reset_token = $1, password_reset_expires = $2
		WHERE id = $3
	`, hash, expires, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_reset_token = NULL, password_reset_expires = NULL
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET active = false, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// sortColumns whitelists client-supplied sort keys.
var sortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

func (r *UserRepository) List(ctx context.Context, sortBy string) ([]*entity.User, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "name"
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE active
		ORDER BY `+col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
