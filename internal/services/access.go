package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guestbook/internal/domain"
)

type accessService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	guestTokens    domain.GuestTokenSigner
	contextTimeout time.Duration
}

// NewAccessService returns the resolver that classifies a viewer as owner, returning guest or anonymous.
func NewAccessService(eventRepo domain.EventRepository, guestRepo domain.GuestRepository, guestTokens domain.GuestTokenSigner, timeout time.Duration) domain.AccessService {
	return &accessService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		guestTokens:    guestTokens,
		contextTimeout: timeout,
	}
}

// Resolve never fails on a bad or foreign guest token; it degrades to anonymous.
// Only storage failures are returned.
func (s *accessService) Resolve(ctx context.Context, event *domain.Event, viewer domain.Viewer) (domain.Access, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewer.UserID != "" && viewer.UserID == event.OwnerID {
		return domain.NewOwnerAccess(viewer.UserID), nil
	}
	if viewer.GuestToken == "" {
		return domain.AnonymousAccess(), nil
	}
	email, err := s.guestTokens.Verify(viewer.GuestToken, event.ID)
	if err != nil {
		return domain.AnonymousAccess(), nil
	}
	guest, err := s.guestRepo.GetByEventAndEmail(ctx, event.ID, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AnonymousAccess(), nil
		}
		return domain.Access{}, fmt.Errorf("load guest: %w", err)
	}
	return domain.NewGuestAccess(guest.Email, guest.Name), nil
}

func (s *accessService) ResolveByEventID(ctx context.Context, eventID string, viewer domain.Viewer) (*domain.Event, domain.Access, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Access{}, domain.ErrNotFound
		}
		return nil, domain.Access{}, fmt.Errorf("get event: %w", err)
	}
	access, err := s.Resolve(ctx, event, viewer)
	if err != nil {
		return nil, domain.Access{}, err
	}
	return event, access, nil
}
