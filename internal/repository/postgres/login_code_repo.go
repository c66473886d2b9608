package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"guestbook/internal/domain"
)

type loginCodeRepository struct {
	DB *sql.DB
}

// NewLoginCodeRepository returns a domain.LoginCodeRepository implemented with Postgres.
func NewLoginCodeRepository(db *sql.DB) domain.LoginCodeRepository {
	return &loginCodeRepository{DB: db}
}

// Create stores a new code hash and drops the address's expired codes in the same statement.
func (r *loginCodeRepository) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	query := `
		WITH pruned AS (
			DELETE FROM login_codes WHERE email = $1 AND expires_at <= NOW()
		)
		INSERT INTO login_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.DB.ExecContext(ctx, query, email, codeHash, expiresAt); err != nil {
		return fmt.Errorf("store login code: %w", err)
	}
	return nil
}

// Consume deletes the matching unexpired code in one statement, so a code can be used once.
func (r *loginCodeRepository) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	query := `
		DELETE FROM login_codes
		WHERE id = (
			SELECT id FROM login_codes
			WHERE email = $1 AND code_hash = $2 AND expires_at > NOW()
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id
	`
	var id string
	err := r.DB.QueryRowContext(ctx, query, email, codeHash).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("consume login code: %w", err)
	}
	return true, nil
}
