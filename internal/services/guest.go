package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guestbook/internal/domain"
)

type guestService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	contextTimeout time.Duration
}

// NewGuestService returns the organizer-facing guest list operations.
func NewGuestService(eventRepo domain.EventRepository, guestRepo domain.GuestRepository, timeout time.Duration) domain.GuestService {
	return &guestService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		contextTimeout: timeout,
	}
}

func (s *guestService) ListGuests(ctx context.Context, eventID, ownerID string, filter domain.GuestFilter, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, 0, err
	}
	guests, total, err := s.guestRepo.ListByEventID(ctx, eventID, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	return guests, total, nil
}

func (s *guestService) Summary(ctx context.Context, eventID, ownerID string) (*domain.GuestSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}
	summary, err := s.guestRepo.Summary(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("guest summary: %w", err)
	}
	return summary, nil
}

func (s *guestService) DeleteGuest(ctx context.Context, eventID, ownerID, guestID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return err
	}
	if err := s.guestRepo.Delete(ctx, eventID, guestID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete guest: %w", err)
	}
	return nil
}
