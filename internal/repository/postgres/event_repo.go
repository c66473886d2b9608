package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"guestbook/internal/domain"
)

const eventColumns = `id, owner_id, title, slug, starts_at, location, message, cover_image_url, primary_media_url,
		theme, detail_blocks, custom_questions, rsvp_open, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var startsAt sql.NullTime
	var location, message, cover, media sql.NullString
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.Title, &e.Slug, &startsAt, &location, &message, &cover, &media,
		&e.Theme, &e.DetailBlocks, &e.Questions, &e.RSVPOpen, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startsAt.Valid {
		e.StartsAt = &startsAt.Time
	}
	e.Location = nullStringPtr(location)
	e.Message = nullStringPtr(message)
	e.CoverImageURL = nullStringPtr(cover)
	e.PrimaryMediaURL = nullStringPtr(media)
	if e.DetailBlocks == nil {
		e.DetailBlocks = domain.DetailBlocks{}
	}
	if e.Questions == nil {
		e.Questions = domain.FormSchema{}
	}
	return e, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func (r *eventRepository) CreateWithCredit(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET credits = credits - 1, updated_at = NOW() WHERE id = $1 AND credits > 0`,
		e.OwnerID)
	if err != nil {
		return fmt.Errorf("debit credit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInsufficientCredits
	}

	query := `
		INSERT INTO events (owner_id, title, slug, starts_at, location, message, cover_image_url, primary_media_url,
			theme, detail_blocks, custom_questions, rsvp_open, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		e.OwnerID, e.Title, e.Slug, e.StartsAt, e.Location, e.Message, e.CoverImageURL, e.PrimaryMediaURL,
		e.Theme, e.DetailBlocks, e.Questions, e.RSVPOpen, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(slug))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Update(ctx context.Context, eventID string, p domain.EventPatch) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.StartsAt != nil {
		set("starts_at", *p.StartsAt)
	}
	if p.Location != nil {
		set("location", *p.Location)
	}
	if p.Message != nil {
		set("message", *p.Message)
	}
	if p.CoverImageURL != nil {
		set("cover_image_url", *p.CoverImageURL)
	}
	if p.PrimaryMediaURL != nil {
		set("primary_media_url", *p.PrimaryMediaURL)
	}
	if p.Theme != nil {
		set("theme", *p.Theme)
	}
	if p.DetailBlocks != nil {
		set("detail_blocks", *p.DetailBlocks)
	}
	if p.Questions != nil {
		set("custom_questions", *p.Questions)
	}
	if p.RSVPOpen != nil {
		set("rsvp_open", *p.RSVPOpen)
	}
	if n == 1 {
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}
