package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/domain"
)

func tenPack() *domain.CreditPackage {
	return &domain.CreditPackage{ListingID: "1234", Name: "Ten pack", Credits: 10, Active: true}
}

func TestPurchaseService_Reconcile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		n           domain.PurchaseNotification
		setup       func(*fakeUserRepo, *fakeLedger)
		wantOutcome domain.PurchaseOutcome
		wantBalance *int
		errIs       error
		check       func(t *testing.T, l *fakeLedger)
	}{
		{
			name: "known buyer balance is incremented",
			n:    domain.PurchaseNotification{Email: "B@x.com", ListingID: "1234"},
			setup: func(u *fakeUserRepo, l *fakeLedger) {
				u.add(&domain.User{ID: "user-b", Email: "b@x.com"})
				l.balances["user-b"] = 5
			},
			wantOutcome: domain.PurchaseResolved,
			wantBalance: intPtr(15),
			check: func(t *testing.T, l *fakeLedger) {
				assert.Equal(t, 15, l.balances["user-b"])
				assert.Empty(t, l.pending)
			},
		},
		{
			name:        "unknown buyer gets a pending credit",
			n:           domain.PurchaseNotification{Email: "a@x.com", ListingID: "1234"},
			wantOutcome: domain.PurchasePending,
			check: func(t *testing.T, l *fakeLedger) {
				require.Len(t, l.pending, 1)
				assert.Equal(t, "a@x.com", l.pending[0].Email)
				assert.Equal(t, 10, l.pending[0].Credits)
				assert.False(t, l.pending[0].Claimed)
				assert.Equal(t, defaultPurchaseSource, l.pending[0].Source)
			},
		},
		{
			name: "unknown listing changes nothing",
			n:    domain.PurchaseNotification{Email: "b@x.com", ListingID: "9999"},
			setup: func(u *fakeUserRepo, l *fakeLedger) {
				u.add(&domain.User{ID: "user-b", Email: "b@x.com"})
				l.balances["user-b"] = 5
			},
			errIs: domain.ErrUnknownPackage,
			check: func(t *testing.T, l *fakeLedger) {
				assert.Equal(t, 5, l.balances["user-b"])
				assert.Empty(t, l.pending)
				assert.Empty(t, l.applied)
			},
		},
		{
			name:  "missing email",
			n:     domain.PurchaseNotification{ListingID: "1234"},
			errIs: domain.ErrInvalidInput,
			check: func(t *testing.T, l *fakeLedger) { assert.Empty(t, l.applied) },
		},
		{
			name:  "missing listing",
			n:     domain.PurchaseNotification{Email: "a@x.com", ListingID: "  "},
			errIs: domain.ErrInvalidInput,
		},
		{
			name:        "account removed after lookup falls back to pending",
			n:           domain.PurchaseNotification{Email: "gone@x.com", ListingID: "1234"},
			setup:       func(u *fakeUserRepo, l *fakeLedger) { u.add(&domain.User{ID: "user-gone", Email: "gone@x.com"}) },
			wantOutcome: domain.PurchasePending,
			check: func(t *testing.T, l *fakeLedger) {
				require.Len(t, l.pending, 1)
				assert.Equal(t, "gone@x.com", l.pending[0].Email)
			},
		},
		{
			name:  "storage failure is fatal",
			n:     domain.PurchaseNotification{Email: "a@x.com", ListingID: "1234"},
			setup: func(u *fakeUserRepo, l *fakeLedger) { l.applyErr = sql.ErrConnDone },
			errIs: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo()
			ledger := newFakeLedger()
			if tt.setup != nil {
				tt.setup(users, ledger)
			}
			svc := NewPurchaseService(newFakePackageRepo(tenPack()), users, ledger, testTimeout)

			res, err := svc.Reconcile(ctx, tt.n)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOutcome, res.Outcome)
				assert.Equal(t, 10, res.Credits)
				assert.Equal(t, tt.wantBalance, res.Balance)
				assert.NotEmpty(t, res.Message)
			}
			if tt.check != nil {
				tt.check(t, ledger)
			}
		})
	}
}

func TestPurchaseService_Reconcile_ReplayedDelivery(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	users.add(&domain.User{ID: "user-b", Email: "b@x.com"})
	ledger := newFakeLedger()
	ledger.balances["user-b"] = 0
	svc := NewPurchaseService(newFakePackageRepo(tenPack()), users, ledger, testTimeout)

	n := domain.PurchaseNotification{Email: "b@x.com", ListingID: "1234", DeliveryID: "d-1"}
	first, err := svc.Reconcile(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseResolved, first.Outcome)

	second, err := svc.Reconcile(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseDuplicate, second.Outcome)
	assert.Equal(t, 10, ledger.balances["user-b"])
}

func TestPurchaseService_Reconcile_ConcurrentGrants(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	users.add(&domain.User{ID: "user-b", Email: "b@x.com"})
	ledger := newFakeLedger()
	ledger.balances["user-b"] = 0
	svc := NewPurchaseService(newFakePackageRepo(tenPack()), users, ledger, testTimeout)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reconcile(ctx, domain.PurchaseNotification{Email: "b@x.com", ListingID: "1234"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 20, ledger.balances["user-b"])
}

func TestCreditAdminService(t *testing.T) {
	ctx := context.Background()
	pkgs := newFakePackageRepo(tenPack())
	ledger := newFakeLedger()
	svc := NewCreditAdminService(pkgs, ledger, testTimeout)

	err := svc.SavePackage(ctx, &domain.CreditPackage{ListingID: "55", Name: "Five", Credits: 0, Active: true})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	err = svc.SavePackage(ctx, &domain.CreditPackage{ListingID: " ", Name: "Five", Credits: 5})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, svc.SavePackage(ctx, &domain.CreditPackage{ListingID: " 55 ", Name: " Five ", Credits: 5, Active: true}))
	assert.Equal(t, "Five", pkgs.byListing["55"].Name)

	list, err := svc.ListPackages(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeactivatePackage(ctx, "1234"))
	assert.False(t, pkgs.byListing["1234"].Active)
	require.ErrorIs(t, svc.DeactivatePackage(ctx, "nope"), domain.ErrNotFound)

	_, err = NewPurchaseService(pkgs, newFakeUserRepo(), ledger, testTimeout).
		Reconcile(ctx, domain.PurchaseNotification{Email: "a@x.com", ListingID: "1234"})
	require.ErrorIs(t, err, domain.ErrUnknownPackage, "inactive packages grant nothing")

	pending, total, err := svc.ListPending(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, pending)
}
