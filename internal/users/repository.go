package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-app/stockroom/internal/shared"
)

// RepositoryPort defines data access methods for user profiles.
type RepositoryPort interface {
	FindByID(ctx context.Context, id int64) (Profile, error)
	UpdateProfile(ctx context.Context, id int64, input SettingsInput) error
}

// Repository implements RepositoryPort on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByID fetches a profile by user ID.
func (r *Repository) FindByID(ctx context.Context, id int64) (Profile, error) {
	const query = `SELECT id, name, email, COALESCE(image_url, ''), created_at, updated_at
		FROM users WHERE id = $1 AND is_active`
	var p Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// UpdateProfile rewrites the mutable profile fields. The unique index on
// users.email reports a conflicting address atomically.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, input SettingsInput) error {
	const query = `UPDATE users
		SET name = $1, email = $2, image_url = NULLIF($3, ''), updated_at = now()
		WHERE id = $4`
	tag, err := r.pool.Exec(ctx, query, input.Name, input.Email, input.ImageURL, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
