package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guestbook/internal/domain"
)

const defaultPurchaseSource = "marketplace"

type purchaseService struct {
	packages       domain.CreditPackageRepository
	userRepo       domain.UserRepository
	ledger         domain.CreditLedger
	contextTimeout time.Duration
}

// NewPurchaseService returns the reconciler behind the purchase webhook.
func NewPurchaseService(packages domain.CreditPackageRepository, userRepo domain.UserRepository, ledger domain.CreditLedger, timeout time.Duration) domain.PurchaseService {
	return &purchaseService{
		packages:       packages,
		userRepo:       userRepo,
		ledger:         ledger,
		contextTimeout: timeout,
	}
}

// Reconcile credits a known buyer or parks the credits as pending for an unknown one.
// Every accepted notification ends in exactly one outcome.
func (s *purchaseService) Reconcile(ctx context.Context, n domain.PurchaseNotification) (*domain.PurchaseResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := normalizeEmail(n.Email)
	listingID := strings.TrimSpace(n.ListingID)
	if email == "" {
		return nil, domain.NewFieldError("email", "is required")
	}
	if listingID == "" {
		return nil, domain.NewFieldError("listing_id", "is required")
	}
	source := strings.TrimSpace(n.Source)
	if source == "" {
		source = defaultPurchaseSource
	}

	pkg, err := s.packages.GetActiveByListingID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("listing %s: %w", listingID, domain.ErrUnknownPackage)
		}
		return nil, fmt.Errorf("resolve credit package: %w", err)
	}

	grant := domain.CreditGrant{
		Email:      email,
		Credits:    pkg.Credits,
		Source:     source,
		ListingID:  listingID,
		DeliveryID: strings.TrimSpace(n.DeliveryID),
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		grant.UserID = user.ID
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return nil, fmt.Errorf("lookup buyer: %w", err)
	}

	balance, err := s.ledger.Apply(ctx, grant)
	if errors.Is(err, domain.ErrUserNotFound) && grant.UserID != "" {
		// The account disappeared between lookup and update; keep the credits claimable.
		grant.UserID = ""
		balance, err = s.ledger.Apply(ctx, grant)
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateDelivery) {
			return &domain.PurchaseResult{
				Outcome: domain.PurchaseDuplicate,
				Email:   email,
				Credits: pkg.Credits,
				Message: "purchase already processed",
			}, nil
		}
		return nil, fmt.Errorf("apply credits: %w", err)
	}

	if grant.UserID == "" {
		return &domain.PurchaseResult{
			Outcome: domain.PurchasePending,
			Email:   email,
			Credits: pkg.Credits,
			Message: fmt.Sprintf("%d credits held for %s until they sign up", pkg.Credits, email),
		}, nil
	}
	return &domain.PurchaseResult{
		Outcome: domain.PurchaseResolved,
		Email:   email,
		Credits: pkg.Credits,
		Balance: &balance,
		Message: fmt.Sprintf("added %d credits to %s", pkg.Credits, email),
	}, nil
}
