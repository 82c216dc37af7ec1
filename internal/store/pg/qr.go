package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
)

// QRRepo implements repository.QRRepository.
//
// The hard invariants live in the schema: a partial unique index on
// qr_code(user_id) gives one-code-per-user, and Claim's conditional UPDATE
// gives one-user-per-code with first-committer-wins semantics. The Go side
// only translates constraint violations into domain errors.
type QRRepo struct {
	pool *pgxpool.Pool
}

const uniqueOwnerConstraint = "one_code_per_user"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

func (r *QRRepo) Create(ctx context.Context, id string, userID *string) (*repository.QRCode, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const qInsert = `
		INSERT INTO qr_code (qr_id, user_id, is_active, created_at)
		VALUES ($1, $2, TRUE, now())
		RETURNING qr_id, user_id, is_active, created_at
	`
	var code repository.QRCode
	if err := tx.QueryRow(ctx, qInsert, id, userID).Scan(
		&code.ID, &code.UserID, &code.IsActive, &code.CreatedAt,
	); err != nil {
		if isUniqueViolation(err, uniqueOwnerConstraint) {
			return nil, repository.ErrAlreadyHasCode
		}
		if isUniqueViolation(err, "") {
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO qr_analytics (qr_id) VALUES ($1)`, id,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *QRRepo) GetByID(ctx context.Context, id string) (*repository.QRCode, error) {
	const query = `
		SELECT qr_id, user_id, is_active, created_at
		FROM qr_code WHERE qr_id = $1
	`
	var code repository.QRCode
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&code.ID, &code.UserID, &code.IsActive, &code.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *QRRepo) GetByUserID(ctx context.Context, userID string) (*repository.QRCode, error) {
	const query = `
		SELECT qr_id, user_id, is_active, created_at
		FROM qr_code WHERE user_id = $1
	`
	var code repository.QRCode
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&code.ID, &code.UserID, &code.IsActive, &code.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *QRRepo) ListIDsCreatedOn(ctx context.Context, day time.Time, limit int) ([]string, error) {
	// Matches the expression index qr_code_created_day.
	const query = `
		SELECT qr_id FROM qr_code
		WHERE (created_at AT TIME ZONE 'UTC')::date = $1::date
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, day.UTC().Format("2006-01-02"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *QRRepo) Claim(ctx context.Context, id, userID string) (*repository.QRCode, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// First committer wins: the UPDATE only hits the row while it is still
	// unbound, so of two racing claims exactly one sees RowsAffected == 1.
	const qBind = `
		UPDATE qr_code SET user_id = $2, is_active = TRUE
		WHERE qr_id = $1 AND user_id IS NULL
	`
	tag, err := tx.Exec(ctx, qBind, id, userID)
	if err != nil {
		if isUniqueViolation(err, uniqueOwnerConstraint) {
			return nil, repository.ErrAlreadyHasCode
		}
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		// Missing row or already bound. Owning a code, this one or any
		// other, outranks the target's state.
		var owns bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM qr_code WHERE user_id = $1)`, userID,
		).Scan(&owns); err != nil {
			return nil, err
		}
		if owns {
			return nil, repository.ErrAlreadyHasCode
		}

		var ownerID *string
		err := tx.QueryRow(ctx, `SELECT user_id FROM qr_code WHERE qr_id = $1`, id).Scan(&ownerID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// Defensive path: tokens should reference stored records, but a
			// verified identifier with no row gets created bound+active.
			const qInsert = `
				INSERT INTO qr_code (qr_id, user_id, is_active, created_at)
				VALUES ($1, $2, TRUE, now())
			`
			if _, err := tx.Exec(ctx, qInsert, id, userID); err != nil {
				if isUniqueViolation(err, uniqueOwnerConstraint) {
					return nil, repository.ErrAlreadyHasCode
				}
				return nil, err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO qr_analytics (qr_id) VALUES ($1)`, id); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			return nil, repository.ErrAlreadyClaimed
		}
	}

	const qSelect = `
		SELECT qr_id, user_id, is_active, created_at FROM qr_code WHERE qr_id = $1
	`
	var code repository.QRCode
	if err := tx.QueryRow(ctx, qSelect, id).Scan(
		&code.ID, &code.UserID, &code.IsActive, &code.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *QRRepo) SetActive(ctx context.Context, userID string, active bool) (*repository.QRCode, error) {
	const query = `
		UPDATE qr_code SET is_active = $2
		WHERE user_id = $1
		RETURNING qr_id, user_id, is_active, created_at
	`
	var code repository.QRCode
	err := r.pool.QueryRow(ctx, query, userID, active).Scan(
		&code.ID, &code.UserID, &code.IsActive, &code.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNoCode
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}
