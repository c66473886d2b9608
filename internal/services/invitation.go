package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"guestbook/internal/domain"
)

type invitationService struct {
	eventRepo      domain.EventRepository
	invitationRepo domain.EventInvitationRepository
	userRepo       domain.UserRepository
	jobs           domain.JobQueue
	publicBaseURL  string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInvitationService returns the service that emails the public event link to a list of addresses.
func NewInvitationService(eventRepo domain.EventRepository, invitationRepo domain.EventInvitationRepository, userRepo domain.UserRepository, jobs domain.JobQueue, publicBaseURL string, logger *slog.Logger, timeout time.Duration) domain.InvitationService {
	return &invitationService{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		jobs:           jobs,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		logger:         logger,
		contextTimeout: timeout,
	}
}

// SendInvitations records and queues one invitation per distinct valid address.
// Malformed addresses are reported in Invalid; addresses whose row or job could not be written in Failed.
func (s *invitationService) SendInvitations(ctx context.Context, eventID, ownerID string, emails []string) (*domain.InvitationBatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(emails) == 0 {
		return nil, domain.NewFieldError("emails", "at least one email is required")
	}
	if len(emails) > domain.MaxInvitationsPerRequest {
		return nil, domain.NewFieldError("emails", "at most %d emails per request", domain.MaxInvitationsPerRequest)
	}

	event, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}

	var hostName, hostEmail string
	if owner, err := s.userRepo.GetByID(ctx, ownerID); err == nil {
		hostName = strings.TrimSpace(owner.Name + " " + owner.LastName)
		hostEmail = owner.Email
	}

	result := &domain.InvitationBatchResult{Invalid: []string{}, Failed: []string{}}
	seen := make(map[string]struct{}, len(emails))
	link := eventURL(s.publicBaseURL, event.Slug)
	for _, raw := range emails {
		email := normalizeEmail(raw)
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		if !emailRegexp.MatchString(email) {
			result.Invalid = append(result.Invalid, raw)
			continue
		}

		inv := &domain.EventInvitation{EventID: event.ID, Email: email, SentAt: time.Now()}
		if err := s.invitationRepo.Record(ctx, inv); err != nil {
			s.logger.ErrorContext(ctx, "save invitation failed", "event_id", event.ID, "email", email, "err", err)
			result.Failed = append(result.Failed, email)
			continue
		}
		data := &domain.InvitationEmailData{
			Email:      email,
			EventTitle: event.Title,
			HostName:   hostName,
			HostEmail:  hostEmail,
			EventURL:   link,
		}
		if err := s.jobs.EnqueueInvitation(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "enqueue invitation failed", "event_id", event.ID, "email", email, "err", err)
			result.Failed = append(result.Failed, email)
			continue
		}
		result.Sent++
	}
	return result, nil
}

func (s *invitationService) ListInvitations(ctx context.Context, eventID, ownerID string, page domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, 0, err
	}
	invitations, total, err := s.invitationRepo.ListByEventID(ctx, eventID, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, total, nil
}
