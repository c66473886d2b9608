package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guestbook/internal/domain"
)

type creditAdminService struct {
	packages       domain.CreditPackageRepository
	ledger         domain.CreditLedger
	contextTimeout time.Duration
}

func NewCreditAdminService(packages domain.CreditPackageRepository, ledger domain.CreditLedger, timeout time.Duration) domain.CreditAdminService {
	return &creditAdminService{packages: packages, ledger: ledger, contextTimeout: timeout}
}

func (s *creditAdminService) ListPackages(ctx context.Context) ([]*domain.CreditPackage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	pkgs, err := s.packages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list credit packages: %w", err)
	}
	return pkgs, nil
}

func (s *creditAdminService) SavePackage(ctx context.Context, pkg *domain.CreditPackage) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	pkg.ListingID = strings.TrimSpace(pkg.ListingID)
	pkg.Name = strings.TrimSpace(pkg.Name)
	if pkg.ListingID == "" {
		return domain.NewFieldError("listing_id", "is required")
	}
	if pkg.Name == "" {
		return domain.NewFieldError("name", "is required")
	}
	if pkg.Credits <= 0 {
		return domain.NewFieldError("credits", "must be greater than zero")
	}
	if err := s.packages.Upsert(ctx, pkg); err != nil {
		return fmt.Errorf("save credit package: %w", err)
	}
	return nil
}

func (s *creditAdminService) DeactivatePackage(ctx context.Context, listingID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.packages.Deactivate(ctx, strings.TrimSpace(listingID)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deactivate credit package: %w", err)
	}
	return nil
}

func (s *creditAdminService) ListPending(ctx context.Context, page domain.PaginationParams) ([]*domain.PendingCredit, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, total, err := s.ledger.ListPending(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending credits: %w", err)
	}
	return items, total, nil
}
