package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guestbook/internal/domain"
)

const guestColumns = `id, event_id, email, name, status, party_size, note, answers, invite_method, created_at, updated_at`

type guestRepository struct {
	DB *sql.DB
}

// NewGuestRepository returns a domain.GuestRepository implemented with Postgres.
func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

func scanGuest(row rowScanner) (*domain.Guest, error) {
	g := &domain.Guest{}
	err := row.Scan(&g.ID, &g.EventID, &g.Email, &g.Name, &g.Status, &g.PartySize, &g.Note, &g.Answers,
		&g.InviteMethod, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Upsert relies on the (event_id, email) unique constraint. xmax = 0 only holds for a freshly inserted tuple.
func (r *guestRepository) Upsert(ctx context.Context, g *domain.Guest) (bool, error) {
	query := `
		INSERT INTO guests (event_id, email, name, status, party_size, note, answers, invite_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (event_id, email) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			party_size = EXCLUDED.party_size,
			note = EXCLUDED.note,
			answers = EXCLUDED.answers,
			invite_method = EXCLUDED.invite_method,
			updated_at = NOW()
		RETURNING id, invite_method, created_at, updated_at, (xmax = 0) AS inserted
	`
	var inserted bool
	err := r.DB.QueryRowContext(ctx, query,
		g.EventID, g.Email, g.Name, g.Status, g.PartySize, g.Note, g.Answers, g.InviteMethod,
	).Scan(&g.ID, &g.InviteMethod, &g.CreatedAt, &g.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert guest: %w", err)
	}
	return inserted, nil
}

func (r *guestRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE event_id = $1 AND email = $2`
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, eventID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) ListByEventID(ctx context.Context, eventID string, filter domain.GuestFilter, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	where := `WHERE event_id = $1`
	args := []any{eventID}
	if filter.Status != "" {
		where += ` AND status = $2`
		args = append(args, filter.Status)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM guests %s ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`,
		guestColumns, where, n+1, n+2)
	args = append(args, page.Limit(), page.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, 0, err
		}
		guests = append(guests, g)
	}
	return guests, total, rows.Err()
}

func (r *guestRepository) Summary(ctx context.Context, eventID string) (*domain.GuestSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'attending'),
			COUNT(*) FILTER (WHERE status = 'maybe'),
			COUNT(*) FILTER (WHERE status = 'not_attending'),
			COUNT(*) FILTER (WHERE status = 'unset'),
			COALESCE(SUM(party_size) FILTER (WHERE status = 'attending'), 0)
		FROM guests
		WHERE event_id = $1
	`
	s := &domain.GuestSummary{}
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&s.Total, &s.Attending, &s.Maybe, &s.NotAttending, &s.Unset, &s.Headcount)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *guestRepository) Delete(ctx context.Context, eventID, guestID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM guests WHERE id = $1 AND event_id = $2`, guestID, eventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
