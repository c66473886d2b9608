package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guestbook/internal/domain"
)

type mediaRepository struct {
	DB *sql.DB
}

// NewMediaRepository returns a domain.MediaRepository implemented with Postgres.
func NewMediaRepository(db *sql.DB) domain.MediaRepository {
	return &mediaRepository{DB: db}
}

func (r *mediaRepository) CreatePhoto(ctx context.Context, p *domain.Photo) error {
	query := `
		INSERT INTO photos (event_id, uploader_user_id, uploader_email, object_key, url, caption)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, p.EventID, p.UploaderUserID, p.UploaderEmail, p.ObjectKey, p.URL, p.Caption).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

func (r *mediaRepository) GetPhoto(ctx context.Context, eventID, photoID string) (*domain.Photo, error) {
	query := `
		SELECT id, event_id, uploader_user_id, uploader_email, object_key, url, caption, created_at
		FROM photos
		WHERE id = $1 AND event_id = $2
	`
	p := &domain.Photo{}
	var userID, email sql.NullString
	err := r.DB.QueryRowContext(ctx, query, photoID, eventID).
		Scan(&p.ID, &p.EventID, &userID, &email, &p.ObjectKey, &p.URL, &p.Caption, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.UploaderUserID = nullStringPtr(userID)
	p.UploaderEmail = nullStringPtr(email)
	return p, nil
}

func (r *mediaRepository) ListPhotos(ctx context.Context, eventID, actor string, page domain.PaginationParams) ([]*domain.Photo, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT p.id, p.event_id, p.uploader_user_id, p.uploader_email, p.object_key, p.url, p.caption, p.created_at,
			(SELECT COUNT(*) FROM photo_likes l WHERE l.photo_id = p.id),
			(SELECT COUNT(*) FROM photo_comments c WHERE c.photo_id = p.id),
			EXISTS (SELECT 1 FROM photo_likes l WHERE l.photo_id = p.id AND l.liker = $2)
		FROM photos p
		WHERE p.event_id = $1
		ORDER BY p.created_at DESC, p.id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, actor, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	photos := make([]*domain.Photo, 0)
	for rows.Next() {
		p := &domain.Photo{}
		var userID, email sql.NullString
		if err := rows.Scan(&p.ID, &p.EventID, &userID, &email, &p.ObjectKey, &p.URL, &p.Caption, &p.CreatedAt,
			&p.LikeCount, &p.CommentCount, &p.LikedByViewer); err != nil {
			return nil, 0, err
		}
		p.UploaderUserID = nullStringPtr(userID)
		p.UploaderEmail = nullStringPtr(email)
		photos = append(photos, p)
	}
	return photos, total, rows.Err()
}

func (r *mediaRepository) DeletePhoto(ctx context.Context, eventID, photoID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM photos WHERE id = $1 AND event_id = $2`, photoID, eventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *mediaRepository) Like(ctx context.Context, photoID, actor string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO photo_likes (photo_id, liker)
		VALUES ($1, $2)
		ON CONFLICT (photo_id, liker) DO NOTHING
	`, photoID, actor)
	return err
}

func (r *mediaRepository) Unlike(ctx context.Context, photoID, actor string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM photo_likes WHERE photo_id = $1 AND liker = $2`, photoID, actor)
	return err
}

func (r *mediaRepository) CreateComment(ctx context.Context, c *domain.PhotoComment) error {
	query := `
		INSERT INTO photo_comments (photo_id, author_name, author, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query, c.PhotoID, c.AuthorName, c.Author, c.Body).Scan(&c.ID, &c.CreatedAt)
}

func (r *mediaRepository) ListComments(ctx context.Context, photoID string, page domain.PaginationParams) ([]*domain.PhotoComment, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM photo_comments WHERE photo_id = $1`, photoID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, photo_id, author_name, author, body, created_at
		FROM photo_comments
		WHERE photo_id = $1
		ORDER BY created_at ASC, id
		LIMIT $2 OFFSET $3
	`, photoID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	comments := make([]*domain.PhotoComment, 0)
	for rows.Next() {
		c := &domain.PhotoComment{}
		if err := rows.Scan(&c.ID, &c.PhotoID, &c.AuthorName, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}
