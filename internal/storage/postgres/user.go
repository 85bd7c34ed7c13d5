package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buanay/pos/internal/domain/auth"
)

// ErrUserNotFound is returned when no account matches the username.
var ErrUserNotFound = errors.New("user not found")

const (
	findUserByUsernameSQL = `SELECT id, username, password_hash, role
		FROM users WHERE username = $1`

	upsertUserSQL = `INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role`
)

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// FindByUsername returns the account for the username, if any.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	rows, err := r.pool.Query(ctx, findUserByUsernameSQL, username)
	if err != nil {
		return nil, fmt.Errorf("finding user %q: %w", username, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user %q: %w", username, err)
	}
	return &u, nil
}

// Upsert creates or updates an account. Used by seeding.
func (r *UserRepository) Upsert(ctx context.Context, u auth.User) error {
	_, err := r.pool.Exec(ctx, upsertUserSQL, u.ID, u.Username, u.PasswordHash, string(u.Role))
	if err != nil {
		return fmt.Errorf("upserting user %q: %w", u.Username, err)
	}
	return nil
}

func scanUser(row pgx.CollectableRow) (auth.User, error) {
	var (
		u    auth.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role); err != nil {
		return auth.User{}, err
	}
	u.Role = auth.Role(role)
	return u, nil
}
