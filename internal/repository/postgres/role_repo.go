package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"guestbook/internal/domain"
)

type roleRepository struct {
	DB *sql.DB
}

func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{DB: db}
}

// Grant resolves the code and inserts the grant in one round trip.
func (r *roleRepository) Grant(ctx context.Context, userID, code string) error {
	query := `
		WITH role AS (
			SELECT id FROM roles WHERE code = $2
		), granted AS (
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM role
			ON CONFLICT (user_id, role_id) DO NOTHING
		)
		SELECT EXISTS (SELECT 1 FROM role)
	`
	var known bool
	if err := r.DB.QueryRowContext(ctx, query, userID, code).Scan(&known); err != nil {
		return fmt.Errorf("grant role %s: %w", code, err)
	}
	if !known {
		return domain.ErrNotFound
	}
	return nil
}

func (r *roleRepository) CodesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.code
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.code
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]string, 0, 2)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
