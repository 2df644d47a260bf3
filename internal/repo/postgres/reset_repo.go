package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResetRepo interface {
	// CreateReset stores a one-time password-reset token for a user.
	CreateReset(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	// Consume marks the token used and rewrites the user's password hash in
	// one transaction. Returns false when the token is unknown, used or
	// expired; callers must not distinguish which.
	Consume(ctx context.Context, token, newHash string) (bool, error)
	// DeleteExpired removes stale tokens (maintenance).
	DeleteExpired(ctx context.Context) (int64, error)
}

type ResetRepoImpl struct{ pool *pgxpool.Pool }

func NewResetRepo(pool *pgxpool.Pool) *ResetRepoImpl { return &ResetRepoImpl{pool: pool} }

func (r *ResetRepoImpl) CreateReset(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO password_resets (user_id, token, expires_at) VALUES ($1,$2,$3)`,
		userID, token, expiresAt,
	)
	return err
}

func (r *ResetRepoImpl) Consume(ctx context.Context, token, newHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	// The guarded UPDATE is what makes the token single-use under concurrent
	// redemptions: only one transaction can flip used=false to true.
	var userID int64
	err = tx.QueryRow(ctx, `
UPDATE password_resets
SET used = true
WHERE token = $1
  AND used = false
  AND expires_at > now()
RETURNING user_id
`, token).Scan(&userID)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET password_hash=$2 WHERE id=$1`, userID, newHash,
	); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *ResetRepoImpl) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, `
DELETE FROM password_resets
WHERE used = true OR expires_at < now() - interval '7 days'
`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ ResetRepo = (*ResetRepoImpl)(nil)
