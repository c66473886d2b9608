package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guestbook/internal/domain"
)

type creditPackageRepository struct {
	DB *sql.DB
}

// NewCreditPackageRepository returns a domain.CreditPackageRepository implemented with Postgres.
func NewCreditPackageRepository(db *sql.DB) domain.CreditPackageRepository {
	return &creditPackageRepository{DB: db}
}

func (r *creditPackageRepository) GetActiveByListingID(ctx context.Context, listingID string) (*domain.CreditPackage, error) {
	query := `
		SELECT listing_id, name, credits, active, created_at, updated_at
		FROM credit_packages
		WHERE listing_id = $1 AND active
	`
	p := &domain.CreditPackage{}
	err := r.DB.QueryRowContext(ctx, query, listingID).Scan(&p.ListingID, &p.Name, &p.Credits, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *creditPackageRepository) List(ctx context.Context) ([]*domain.CreditPackage, error) {
	query := `
		SELECT listing_id, name, credits, active, created_at, updated_at
		FROM credit_packages
		ORDER BY listing_id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.CreditPackage, 0)
	for rows.Next() {
		p := &domain.CreditPackage{}
		if err := rows.Scan(&p.ListingID, &p.Name, &p.Credits, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *creditPackageRepository) Upsert(ctx context.Context, p *domain.CreditPackage) error {
	query := `
		INSERT INTO credit_packages (listing_id, name, credits, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (listing_id) DO UPDATE SET
			name = EXCLUDED.name,
			credits = EXCLUDED.credits,
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	return r.DB.QueryRowContext(ctx, query, p.ListingID, p.Name, p.Credits, p.Active).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *creditPackageRepository) Deactivate(ctx context.Context, listingID string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE credit_packages SET active = FALSE, updated_at = NOW() WHERE listing_id = $1`, listingID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type creditLedger struct {
	DB *sql.DB
}

// NewCreditLedger returns a domain.CreditLedger implemented with Postgres transactions.
func NewCreditLedger(db *sql.DB) domain.CreditLedger {
	return &creditLedger{DB: db}
}

func (l *creditLedger) Apply(ctx context.Context, g domain.CreditGrant) (int, error) {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if g.DeliveryID != "" {
		outcome := domain.PurchasePending
		if g.UserID != "" {
			outcome = domain.PurchaseResolved
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_deliveries (delivery_id, email, listing_id, outcome)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (delivery_id) DO NOTHING
		`, g.DeliveryID, g.Email, g.ListingID, outcome)
		if err != nil {
			return 0, fmt.Errorf("record delivery: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, domain.ErrDuplicateDelivery
		}
	}

	balance := 0
	if g.UserID != "" {
		err = tx.QueryRowContext(ctx,
			`UPDATE users SET credits = credits + $1, updated_at = NOW() WHERE id = $2 RETURNING credits`,
			g.Credits, g.UserID,
		).Scan(&balance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, domain.ErrUserNotFound
			}
			return 0, fmt.Errorf("increment balance: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pending_credits (email, credits, source, listing_id)
			VALUES ($1, $2, $3, $4)
		`, g.Email, g.Credits, g.Source, g.ListingID)
		if err != nil {
			return 0, fmt.Errorf("insert pending credit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return balance, nil
}

// ClaimPending locks the unclaimed rows it marks, so two concurrent claims never move the same credits twice.
func (l *creditLedger) ClaimPending(ctx context.Context, userID, email string) (int, int, error) {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var claimed int
	err = tx.QueryRowContext(ctx, `
		WITH claimed AS (
			UPDATE pending_credits
			SET claimed = TRUE, claimed_by = $1, claimed_at = NOW()
			WHERE LOWER(email) = LOWER($2) AND NOT claimed
			RETURNING credits
		)
		SELECT COALESCE(SUM(credits), 0) FROM claimed
	`, userID, email).Scan(&claimed)
	if err != nil {
		return 0, 0, fmt.Errorf("claim pending credits: %w", err)
	}

	var balance int
	if claimed > 0 {
		err = tx.QueryRowContext(ctx,
			`UPDATE users SET credits = credits + $1, updated_at = NOW() WHERE id = $2 RETURNING credits`,
			claimed, userID,
		).Scan(&balance)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&balance)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, domain.ErrUserNotFound
		}
		return 0, 0, fmt.Errorf("read balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return claimed, balance, nil
}

func (l *creditLedger) ListPending(ctx context.Context, page domain.PaginationParams) ([]*domain.PendingCredit, int, error) {
	var total int
	if err := l.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_credits`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, email, credits, source, listing_id, claimed, claimed_by, created_at, claimed_at
		FROM pending_credits
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := l.DB.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]*domain.PendingCredit, 0)
	for rows.Next() {
		p := &domain.PendingCredit{}
		var claimedBy sql.NullString
		var claimedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Email, &p.Credits, &p.Source, &p.ListingID, &p.Claimed, &claimedBy, &p.CreatedAt, &claimedAt); err != nil {
			return nil, 0, err
		}
		p.ClaimedBy = nullStringPtr(claimedBy)
		if claimedAt.Valid {
			p.ClaimedAt = &claimedAt.Time
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
