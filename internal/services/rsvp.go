package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"guestbook/internal/domain"
)

const (
	minGuestNameLength  = 2
	maxGuestNameLength  = 120
	maxAdditionalGuests = 20
	maxNoteLength       = 2000
)

type rsvpService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	guestTokens    domain.GuestTokenSigner
	jobs           domain.JobQueue
	publicBaseURL  string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRSVPService returns the service behind the public RSVP form.
func NewRSVPService(eventRepo domain.EventRepository, guestRepo domain.GuestRepository, guestTokens domain.GuestTokenSigner, jobs domain.JobQueue, publicBaseURL string, logger *slog.Logger, timeout time.Duration) domain.RSVPService {
	return &rsvpService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		guestTokens:    guestTokens,
		jobs:           jobs,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		logger:         logger,
		contextTimeout: timeout,
	}
}

// Submit creates or updates the guest keyed by (event, normalized email).
// A valid guest token for the event puts the submission in edit mode, where the email cannot change.
func (s *rsvpService) Submit(ctx context.Context, eventID string, sub domain.RSVPSubmission, guestToken string) (*domain.RSVPResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.RSVPOpen {
		return nil, domain.ErrRSVPClosed
	}

	guest, err := buildGuest(event, sub)
	if err != nil {
		return nil, err
	}

	if guestToken != "" {
		if tokenEmail, err := s.guestTokens.Verify(guestToken, event.ID); err == nil && tokenEmail != guest.Email {
			return nil, domain.NewFieldError("email", "email cannot be changed")
		}
	}

	created, err := s.guestRepo.Upsert(ctx, guest)
	if err != nil {
		return nil, fmt.Errorf("save rsvp: %w", err)
	}

	token, err := s.guestTokens.Sign(event.ID, guest.Email)
	if err != nil {
		return nil, fmt.Errorf("sign guest token: %w", err)
	}

	confirmation := &domain.RSVPConfirmationEmailData{
		Email:      guest.Email,
		GuestName:  guest.Name,
		EventTitle: event.Title,
		EventURL:   eventURL(s.publicBaseURL, event.Slug),
		Status:     guest.Status,
		PartySize:  guest.PartySize,
		Updated:    !created,
	}
	if err := s.jobs.EnqueueRSVPConfirmation(context.WithoutCancel(ctx), confirmation); err != nil {
		s.logger.WarnContext(ctx, "enqueue rsvp confirmation failed", "event_id", event.ID, "guest_id", guest.ID, "err", err)
	}

	return &domain.RSVPResult{Guest: guest, GuestToken: token, Created: created}, nil
}

func buildGuest(event *domain.Event, sub domain.RSVPSubmission) (*domain.Guest, error) {
	name := strings.TrimSpace(sub.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return nil, domain.NewFieldError("name", "is required")
	case n < minGuestNameLength:
		return nil, domain.NewFieldError("name", "must be at least %d characters", minGuestNameLength)
	case n > maxGuestNameLength:
		return nil, domain.NewFieldError("name", "must be at most %d characters", maxGuestNameLength)
	}

	email := normalizeEmail(sub.Email)
	if !emailRegexp.MatchString(email) {
		return nil, domain.NewFieldError("email", "must be a valid email address")
	}

	status, err := domain.ParseRSVPStatus(sub.Status)
	if err != nil {
		return nil, err
	}

	partySize := 1
	if sub.AdditionalGuests != nil {
		extra := *sub.AdditionalGuests
		if extra < 0 || extra > maxAdditionalGuests {
			return nil, domain.NewFieldError("additional_guests", "must be between 0 and %d", maxAdditionalGuests)
		}
		partySize = extra + 1
	}

	note := strings.TrimSpace(sub.Note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, domain.NewFieldError("note", "must be at most %d characters", maxNoteLength)
	}

	answers, err := event.Questions.CheckAnswers(sub.Answers)
	if err != nil {
		return nil, err
	}

	method, err := domain.ParseInviteMethod(sub.InviteMethod)
	if err != nil {
		return nil, err
	}

	return &domain.Guest{
		EventID:      event.ID,
		Email:        email,
		Name:         name,
		Status:       status,
		PartySize:    partySize,
		Note:         note,
		Answers:      answers,
		InviteMethod: method,
	}, nil
}

// GetMine returns the guest record a guest token points at, for pre-filling the edit form.
func (s *rsvpService) GetMine(ctx context.Context, eventID, guestToken string) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if guestToken == "" {
		return nil, domain.ErrUnauthorized
	}
	email, err := s.guestTokens.Verify(guestToken, eventID)
	if err != nil {
		return nil, err
	}
	guest, err := s.guestRepo.GetByEventAndEmail(ctx, eventID, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return guest, nil
}

func eventURL(base, slug string) string {
	return base + "/e/" + slug
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
