package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"guestbook/internal/domain"
)

const (
	maxCaptionLength = 500
	maxCommentLength = 1000
	uploadBudget     = 2 * time.Minute
)

type galleryService struct {
	access         domain.AccessService
	mediaRepo      domain.MediaRepository
	userRepo       domain.UserRepository
	storage        domain.ObjectStorage
	jobs           domain.JobQueue
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewGalleryService returns the photo gallery, open to the event owner and to guests who responded.
func NewGalleryService(access domain.AccessService, mediaRepo domain.MediaRepository, userRepo domain.UserRepository, storage domain.ObjectStorage, jobs domain.JobQueue, logger *slog.Logger, timeout time.Duration) domain.GalleryService {
	return &galleryService{
		access:         access,
		mediaRepo:      mediaRepo,
		userRepo:       userRepo,
		storage:        storage,
		jobs:           jobs,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *galleryService) resolve(ctx context.Context, eventID string, viewer domain.Viewer) (domain.Access, error) {
	_, access, err := s.access.ResolveByEventID(ctx, eventID, viewer)
	if err != nil {
		return domain.Access{}, err
	}
	if !access.CanViewGallery {
		return domain.Access{}, domain.ErrGalleryLocked
	}
	return access, nil
}

func (s *galleryService) loadPhoto(ctx context.Context, eventID, photoID string) (*domain.Photo, error) {
	photo, err := s.mediaRepo.GetPhoto(ctx, eventID, photoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return photo, nil
}

// Upload stores the object first and then the row. If the row insert fails the object is queued for deletion.
func (s *galleryService) Upload(ctx context.Context, eventID string, viewer domain.Viewer, up domain.PhotoUpload) (*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout+uploadBudget)
	defer cancel()

	access, err := s.resolve(ctx, eventID, viewer)
	if err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(up.ContentType))
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.NewFieldError("file", "must be an image")
	}
	if up.Size <= 0 {
		return nil, domain.NewFieldError("file", "is empty")
	}
	if up.Size > domain.MaxPhotoBytes {
		return nil, domain.NewFieldError("file", "must be at most %d MiB", domain.MaxPhotoBytes>>20)
	}
	caption := strings.TrimSpace(up.Caption)
	if utf8.RuneCountInString(caption) > maxCaptionLength {
		return nil, domain.NewFieldError("caption", "must be at most %d characters", maxCaptionLength)
	}

	key := objectKey(eventID, up.Filename, contentType)
	url, err := s.storage.Put(ctx, key, contentType, up.Size, up.Body)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	photo := &domain.Photo{
		EventID:   eventID,
		ObjectKey: key,
		URL:       url,
		Caption:   caption,
	}
	switch access.Role {
	case domain.AccessOwner:
		userID := viewer.UserID
		photo.UploaderUserID = &userID
	case domain.AccessReturningGuest:
		email := access.GuestEmail
		photo.UploaderEmail = &email
	}

	if err := s.mediaRepo.CreatePhoto(ctx, photo); err != nil {
		s.scheduleObjectDeletion(ctx, key)
		return nil, fmt.Errorf("save photo: %w", err)
	}
	return photo, nil
}

func objectKey(eventID, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 8 {
		ext = ""
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return "events/" + eventID + "/" + uuid.NewString() + ext
}

func (s *galleryService) scheduleObjectDeletion(ctx context.Context, key string) {
	if err := s.jobs.EnqueueObjectDeletion(context.WithoutCancel(ctx), key); err != nil {
		s.logger.ErrorContext(ctx, "enqueue object deletion failed", "key", key, "err", err)
	}
}

func (s *galleryService) ListPhotos(ctx context.Context, eventID string, viewer domain.Viewer, page domain.PaginationParams) ([]*domain.Photo, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.resolve(ctx, eventID, viewer)
	if err != nil {
		return nil, 0, err
	}
	photos, total, err := s.mediaRepo.ListPhotos(ctx, eventID, access.ActorKey(), page)
	if err != nil {
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}
	return photos, total, nil
}

// DeletePhoto is allowed for the event owner and for the guest who uploaded the photo.
func (s *galleryService) DeletePhoto(ctx context.Context, eventID, photoID string, viewer domain.Viewer) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.resolve(ctx, eventID, viewer)
	if err != nil {
		return err
	}
	photo, err := s.loadPhoto(ctx, eventID, photoID)
	if err != nil {
		return err
	}
	if !canDeletePhoto(access, photo) {
		return domain.ErrForbidden
	}
	if err := s.mediaRepo.DeletePhoto(ctx, eventID, photoID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete photo: %w", err)
	}
	s.scheduleObjectDeletion(ctx, photo.ObjectKey)
	return nil
}

func canDeletePhoto(access domain.Access, photo *domain.Photo) bool {
	switch access.Role {
	case domain.AccessOwner:
		return true
	case domain.AccessReturningGuest:
		return photo.UploaderEmail != nil && strings.EqualFold(*photo.UploaderEmail, access.GuestEmail)
	default:
		return false
	}
}

func (s *galleryService) Like(ctx context.Context, eventID, photoID string, viewer domain.Viewer) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.resolve(ctx, eventID, viewer)
	if err != nil {
		return err
	}
	if _, err := s.loadPhoto(ctx, eventID, photoID); err != nil {
		return err
	}
	if err := s.mediaRepo.Like(ctx, photoID, access.ActorKey()); err != nil {
		return fmt.Errorf("like photo: %w", err)
	}
	return nil
}

func (s *galleryService) Unlike(ctx context.Context, eventID, photoID string, viewer domain.Viewer) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.resolve(ctx, eventID, viewer)
	if err != nil {
		return err
	}
	if _, err := s.loadPhoto(ctx, eventID, photoID); err != nil {
		return err
	}
	if err := s.mediaRepo.Unlike(ctx, photoID, access.ActorKey()); err != nil {
		return fmt.Errorf("unlike photo: %w", err)
	}
	return nil
}

func (s *galleryService) Comment(ctx context.Context, eventID, photoID string, viewer domain.Viewer, body string) (*domain.PhotoComment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	access, err := s.resolve(ctx, eventID, viewer)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	switch n := utf8.RuneCountInString(body); {
	case n == 0:
		return nil, domain.NewFieldError("body", "is required")
	case n > maxCommentLength:
		return nil, domain.NewFieldError("body", "must be at most %d characters", maxCommentLength)
	}
	if _, err := s.loadPhoto(ctx, eventID, photoID); err != nil {
		return nil, err
	}

	authorName, err := s.authorName(ctx, access, viewer)
	if err != nil {
		return nil, err
	}
	comment := &domain.PhotoComment{
		PhotoID:    photoID,
		AuthorName: authorName,
		Author:     access.ActorKey(),
		Body:       body,
	}
	if err := s.mediaRepo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}
	return comment, nil
}

func (s *galleryService) authorName(ctx context.Context, access domain.Access, viewer domain.Viewer) (string, error) {
	if access.Role == domain.AccessReturningGuest {
		return access.GuestName, nil
	}
	user, err := s.userRepo.GetByID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "Host", nil
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	if name := strings.TrimSpace(user.Name + " " + user.LastName); name != "" {
		return name, nil
	}
	return "Host", nil
}

func (s *galleryService) ListComments(ctx context.Context, eventID, photoID string, viewer domain.Viewer, page domain.PaginationParams) ([]*domain.PhotoComment, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.resolve(ctx, eventID, viewer); err != nil {
		return nil, 0, err
	}
	if _, err := s.loadPhoto(ctx, eventID, photoID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.mediaRepo.ListComments(ctx, photoID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}
