package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"guestbook/internal/delivery/http/helpers"
	"guestbook/internal/delivery/http/middleware"
	"guestbook/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID = "11111111-1111-4111-8111-111111111111"
	testPhotoID = "22222222-2222-4222-8222-222222222222"
	testGuestID = "33333333-3333-4333-8333-333333333333"
)

// decodeEnvelope decodes the response envelope and, when dest is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil && envelope.Data != nil {
		b, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, dest))
	}
	return envelope
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.SetUserID(r.Context(), userID))
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err         error
	events      []*domain.Event
	event       *domain.Event
	publicView  *domain.PublicEventView
	lastCreate  *domain.Event
	lastEventID string
	lastOwnerID string
	lastPatch   domain.EventPatch
	lastSlug    string
	lastViewer  domain.Viewer
}

func (f *fakeEventService) CreateEvent(_ context.Context, event *domain.Event) error {
	f.lastCreate = event
	if f.err != nil {
		return f.err
	}
	event.ID = testEventID
	event.Slug = "party-abc123"
	return nil
}

func (f *fakeEventService) GetEvent(_ context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.event, f.err
}

func (f *fakeEventService) GetPublicEvent(_ context.Context, slug string, viewer domain.Viewer) (*domain.PublicEventView, error) {
	f.lastSlug, f.lastViewer = slug, viewer
	return f.publicView, f.err
}

func (f *fakeEventService) ListMyEvents(_ context.Context, ownerID string) ([]*domain.Event, error) {
	f.lastOwnerID = ownerID
	return f.events, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastEventID, f.lastOwnerID, f.lastPatch = eventID, ownerID, patch
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, ownerID string) error {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.err
}

// fakeRSVPService implements domain.RSVPService.
type fakeRSVPService struct {
	result    *domain.RSVPResult
	guest     *domain.Guest
	err       error
	lastSub   domain.RSVPSubmission
	lastToken string
}

func (f *fakeRSVPService) Submit(_ context.Context, _ string, sub domain.RSVPSubmission, guestToken string) (*domain.RSVPResult, error) {
	f.lastSub, f.lastToken = sub, guestToken
	return f.result, f.err
}

func (f *fakeRSVPService) GetMine(_ context.Context, _ string, guestToken string) (*domain.Guest, error) {
	f.lastToken = guestToken
	return f.guest, f.err
}

// fakeGuestService implements domain.GuestService.
type fakeGuestService struct {
	guests     []*domain.Guest
	total      int
	summary    *domain.GuestSummary
	err        error
	lastFilter domain.GuestFilter
	lastPage   domain.PaginationParams
	lastGuest  string
}

func (f *fakeGuestService) ListGuests(_ context.Context, _, _ string, filter domain.GuestFilter, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	f.lastFilter, f.lastPage = filter, page
	return f.guests, f.total, f.err
}

func (f *fakeGuestService) Summary(_ context.Context, _, _ string) (*domain.GuestSummary, error) {
	return f.summary, f.err
}

func (f *fakeGuestService) DeleteGuest(_ context.Context, _, _, guestID string) error {
	f.lastGuest = guestID
	return f.err
}

// fakeInvitationService implements domain.InvitationService.
type fakeInvitationService struct {
	result     *domain.InvitationBatchResult
	items      []*domain.EventInvitation
	total      int
	err        error
	lastEmails []string
}

func (f *fakeInvitationService) SendInvitations(_ context.Context, _, _ string, emails []string) (*domain.InvitationBatchResult, error) {
	f.lastEmails = emails
	return f.result, f.err
}

func (f *fakeInvitationService) ListInvitations(_ context.Context, _, _ string, _ domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	return f.items, f.total, f.err
}

// fakeGalleryService implements domain.GalleryService.
type fakeGalleryService struct {
	photo       *domain.Photo
	photos      []*domain.Photo
	comment     *domain.PhotoComment
	err         error
	lastViewer  domain.Viewer
	lastUpload  domain.PhotoUpload
	lastBody    []byte
	lastComment string
	likes       int
}

func (f *fakeGalleryService) Upload(_ context.Context, _ string, viewer domain.Viewer, up domain.PhotoUpload) (*domain.Photo, error) {
	f.lastViewer, f.lastUpload = viewer, up
	if up.Body != nil {
		f.lastBody, _ = io.ReadAll(up.Body)
	}
	return f.photo, f.err
}

func (f *fakeGalleryService) ListPhotos(_ context.Context, _ string, viewer domain.Viewer, _ domain.PaginationParams) ([]*domain.Photo, int, error) {
	f.lastViewer = viewer
	return f.photos, len(f.photos), f.err
}

func (f *fakeGalleryService) DeletePhoto(_ context.Context, _, _ string, viewer domain.Viewer) error {
	f.lastViewer = viewer
	return f.err
}

func (f *fakeGalleryService) Like(_ context.Context, _, _ string, viewer domain.Viewer) error {
	f.lastViewer = viewer
	f.likes++
	return f.err
}

func (f *fakeGalleryService) Unlike(_ context.Context, _, _ string, viewer domain.Viewer) error {
	f.lastViewer = viewer
	f.likes--
	return f.err
}

func (f *fakeGalleryService) Comment(_ context.Context, _, _ string, viewer domain.Viewer, body string) (*domain.PhotoComment, error) {
	f.lastViewer, f.lastComment = viewer, body
	return f.comment, f.err
}

func (f *fakeGalleryService) ListComments(_ context.Context, _, _ string, viewer domain.Viewer, _ domain.PaginationParams) ([]*domain.PhotoComment, int, error) {
	f.lastViewer = viewer
	return nil, 0, f.err
}

// fakePurchaseService implements domain.PurchaseService.
type fakePurchaseService struct {
	result *domain.PurchaseResult
	err    error
	last   domain.PurchaseNotification
}

func (f *fakePurchaseService) Reconcile(_ context.Context, n domain.PurchaseNotification) (*domain.PurchaseResult, error) {
	f.last = n
	return f.result, f.err
}

// fakeCreditAdminService implements domain.CreditAdminService.
type fakeCreditAdminService struct {
	packages    []*domain.CreditPackage
	pending     []*domain.PendingCredit
	err         error
	lastSaved   *domain.CreditPackage
	deactivated string
}

func (f *fakeCreditAdminService) ListPackages(_ context.Context) ([]*domain.CreditPackage, error) {
	return f.packages, f.err
}

func (f *fakeCreditAdminService) SavePackage(_ context.Context, pkg *domain.CreditPackage) error {
	f.lastSaved = pkg
	return f.err
}

func (f *fakeCreditAdminService) DeactivatePackage(_ context.Context, listingID string) error {
	f.deactivated = listingID
	return f.err
}

func (f *fakeCreditAdminService) ListPending(_ context.Context, _ domain.PaginationParams) ([]*domain.PendingCredit, int, error) {
	return f.pending, len(f.pending), f.err
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	getByIDUser         *domain.User
	getByIDErr          error
	updateErr           error
	lastUpdate          *domain.User
	requestLoginCodeErr error
	lastLoginEmail      string
	verifyResult        *domain.LoginResult
	verifyErr           error
	logoutErr           error
	lastLogout          *domain.Claims
	claimed             int
	balance             int
	claimErr            error
}

func (f *fakeUserService) RequestLoginCode(_ context.Context, email string) error {
	f.lastLoginEmail = email
	return f.requestLoginCodeErr
}

func (f *fakeUserService) VerifyLoginCode(_ context.Context, _, _ string) (*domain.LoginResult, error) {
	return f.verifyResult, f.verifyErr
}

func (f *fakeUserService) Logout(_ context.Context, claims *domain.Claims) error {
	f.lastLogout = claims
	return f.logoutErr
}

func (f *fakeUserService) GetByID(_ context.Context, _ string) (*domain.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u := *f.getByIDUser
	return &u, nil
}

func (f *fakeUserService) Update(_ context.Context, user *domain.User) error {
	f.lastUpdate = user
	return f.updateErr
}

func (f *fakeUserService) ClaimPendingCredits(_ context.Context, _ string) (int, int, error) {
	return f.claimed, f.balance, f.claimErr
}
