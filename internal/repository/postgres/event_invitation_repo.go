package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"guestbook/internal/domain"
)

type eventInvitationRepository struct {
	DB *sql.DB
}

func NewEventInvitationRepository(db *sql.DB) domain.EventInvitationRepository {
	return &eventInvitationRepository{DB: db}
}

func (r *eventInvitationRepository) Record(ctx context.Context, inv *domain.EventInvitation) error {
	query := `
		INSERT INTO event_invitations (event_id, email, sent_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, email) DO UPDATE SET
			send_count = event_invitations.send_count + 1,
			sent_at = EXCLUDED.sent_at
		RETURNING id, send_count
	`
	err := r.DB.QueryRowContext(ctx, query, inv.EventID, inv.Email, inv.SentAt).Scan(&inv.ID, &inv.SendCount)
	if err != nil {
		return fmt.Errorf("record invitation: %w", err)
	}
	return nil
}

// ListByEventID returns the most recently sent invitations first.
func (r *eventInvitationRepository) ListByEventID(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_invitations WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.EventInvitation{}, 0, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, event_id, email, send_count, sent_at
		FROM event_invitations
		WHERE event_id = $1
		ORDER BY sent_at DESC, email
		LIMIT $2 OFFSET $3
	`, eventID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*domain.EventInvitation, 0, min(total, page.Limit()))
	for rows.Next() {
		inv := &domain.EventInvitation{}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.Email, &inv.SendCount, &inv.SentAt); err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}
