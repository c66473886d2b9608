package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/domain"
)

func newGuestFixture() (*fakeEventRepo, *fakeGuestRepo, domain.GuestService) {
	events := newFakeEventRepo()
	events.add(&domain.Event{ID: "ev-1", OwnerID: "owner-1", Title: "Party", Slug: "party"})
	guests := newFakeGuestRepo()
	seed := []*domain.Guest{
		{EventID: "ev-1", Name: "Ana", Email: "ana@x.com", Status: domain.RSVPAttending, PartySize: 3},
		{EventID: "ev-1", Name: "Bo", Email: "bo@x.com", Status: domain.RSVPAttending, PartySize: 1},
		{EventID: "ev-1", Name: "Cy", Email: "cy@x.com", Status: domain.RSVPNotAttending, PartySize: 2},
		{EventID: "ev-2", Name: "Di", Email: "di@x.com", Status: domain.RSVPAttending, PartySize: 5},
	}
	for _, g := range seed {
		_, _ = guests.Upsert(context.Background(), g)
	}
	return events, guests, NewGuestService(events, guests, testTimeout)
}

func TestGuestService_ListGuests(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newGuestFixture()

	all, total, err := svc.ListGuests(ctx, "ev-1", "owner-1", domain.GuestFilter{}, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	attending, total, err := svc.ListGuests(ctx, "ev-1", "owner-1", domain.GuestFilter{Status: domain.RSVPAttending}, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, g := range attending {
		assert.Equal(t, domain.RSVPAttending, g.Status)
	}

	_, _, err = svc.ListGuests(ctx, "ev-1", "someone-else", domain.GuestFilter{}, domain.PaginationParams{})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = svc.ListGuests(ctx, "missing", "owner-1", domain.GuestFilter{}, domain.PaginationParams{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuestService_Summary(t *testing.T) {
	_, _, svc := newGuestFixture()

	summary, err := svc.Summary(context.Background(), "ev-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Attending)
	assert.Equal(t, 1, summary.NotAttending)
	// Headcount counts party sizes of attending guests only.
	assert.Equal(t, 4, summary.Headcount)
}

func TestGuestService_DeleteGuest(t *testing.T) {
	ctx := context.Background()
	_, guests, svc := newGuestFixture()
	ana, err := guests.GetByEventAndEmail(ctx, "ev-1", "ana@x.com")
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteGuest(ctx, "ev-1", "someone-else", ana.ID), domain.ErrForbidden)
	require.NoError(t, svc.DeleteGuest(ctx, "ev-1", "owner-1", ana.ID))
	require.ErrorIs(t, svc.DeleteGuest(ctx, "ev-1", "owner-1", ana.ID), domain.ErrNotFound)

	di, err := guests.GetByEventAndEmail(ctx, "ev-2", "di@x.com")
	require.NoError(t, err)
	require.ErrorIs(t, svc.DeleteGuest(ctx, "ev-1", "owner-1", di.ID), domain.ErrNotFound, "guest of another event")
}
