package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"guestbook/internal/domain"
)

const (
	maxTitleLength    = 200
	maxMessageLength  = 5000
	maxLocationLength = 300
	slugBaseMaxLength = 60
	slugSuffixLength  = 6
	slugAttempts      = 3
	slugAlphabet      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

type eventService struct {
	eventRepo      domain.EventRepository
	access         domain.AccessService
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, access domain.AccessService, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		access:         access,
		contextTimeout: timeout,
	}
}

// CreateEvent validates the event, then spends one of the owner's credits and inserts it.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return domain.ErrUnauthorized
	}
	event.Title = strings.TrimSpace(event.Title)
	if err := validateTitle(event.Title); err != nil {
		return err
	}
	if err := validateEventFields(event.Location, event.Message, event.CoverImageURL, event.PrimaryMediaURL); err != nil {
		return err
	}
	if event.DetailBlocks == nil {
		event.DetailBlocks = domain.DetailBlocks{}
	}
	if err := event.DetailBlocks.Validate(); err != nil {
		return err
	}
	if event.Questions == nil {
		event.Questions = domain.FormSchema{}
	}
	if err := event.Questions.Validate(); err != nil {
		return err
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	for attempt := 0; ; attempt++ {
		eventSlug, err := generateSlug(event.Title)
		if err != nil {
			return fmt.Errorf("generate slug: %w", err)
		}
		event.Slug = eventSlug
		err = s.eventRepo.CreateWithCredit(ctx, event)
		if errors.Is(err, domain.ErrSlugTaken) && attempt+1 < slugAttempts {
			continue
		}
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientCredits) {
				return err
			}
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	}
}

func generateSlug(title string) (string, error) {
	base := slug.Make(title)
	if len(base) > slugBaseMaxLength {
		base = strings.TrimRight(base[:slugBaseMaxLength], "-")
	}
	if base == "" {
		base = "event"
	}
	suffix, err := gonanoid.Generate(slugAlphabet, slugSuffixLength)
	if err != nil {
		return "", err
	}
	return base + "-" + suffix, nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return domain.NewFieldError("title", "is required")
	}
	if n > maxTitleLength {
		return domain.NewFieldError("title", "must be at most %d characters", maxTitleLength)
	}
	return nil
}

func validateEventFields(location, message, coverURL, mediaURL *string) error {
	if location != nil && utf8.RuneCountInString(*location) > maxLocationLength {
		return domain.NewFieldError("location", "must be at most %d characters", maxLocationLength)
	}
	if message != nil && utf8.RuneCountInString(*message) > maxMessageLength {
		return domain.NewFieldError("message", "must be at most %d characters", maxMessageLength)
	}
	if coverURL != nil && *coverURL != "" && !domain.IsHTTPURL(*coverURL) {
		return domain.NewFieldError("cover_image_url", "must be an http or https URL")
	}
	if mediaURL != nil && *mediaURL != "" && !domain.IsHTTPURL(*mediaURL) {
		return domain.NewFieldError("primary_media_url", "must be an http or https URL")
	}
	return nil
}

// loadOwnedEvent returns ErrNotFound for a missing event and ErrForbidden when ownerID does not own it.
func loadOwnedEvent(ctx context.Context, repo domain.EventRepository, eventID, ownerID string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if ownerID == "" || event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
}

// GetPublicEvent looks the event up by slug, falling back to the id when the path value is a UUID.
func (s *eventService) GetPublicEvent(ctx context.Context, slugOrID string, viewer domain.Viewer) (*domain.PublicEventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slugOrID)
	if errors.Is(err, domain.ErrNotFound) {
		if _, parseErr := uuid.Parse(slugOrID); parseErr == nil {
			event, err = s.eventRepo.GetByID(ctx, slugOrID)
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	access, err := s.access.Resolve(ctx, event, viewer)
	if err != nil {
		return nil, fmt.Errorf("resolve access: %w", err)
	}
	return &domain.PublicEventView{Event: event, Access: access}, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if err := validateEventFields(patch.Location, patch.Message, patch.CoverImageURL, patch.PrimaryMediaURL); err != nil {
		return nil, err
	}
	if patch.DetailBlocks != nil {
		if err := patch.DetailBlocks.Validate(); err != nil {
			return nil, err
		}
	}
	if patch.Questions != nil {
		if err := patch.Questions.Validate(); err != nil {
			return nil, err
		}
	}

	event, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return event, nil
	}
	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
