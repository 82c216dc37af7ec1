package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
)

// UserDirectory implements repository.UserDirectory against the local
// app_user mirror kept in sync with the external identity service.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func (d *UserDirectory) UpdateProfile(ctx context.Context, userID string, p repository.Profile) error {
	const query = `
		INSERT INTO app_user (id, first_name, last_name, email, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE
		SET first_name = $2, last_name = $3, email = $4, updated_at = now()
	`
	_, err := d.pool.Exec(ctx, query, userID, p.FirstName, p.LastName, p.Email)
	return err
}
