package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"guestbook/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 5 * time.Second

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID       map[string]*domain.Event
	credits    map[string]int
	createErrs []error
	getErr     error
	slugs      []string
	nextID     int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), credits: make(map[string]int)}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.DetailBlocks == nil {
		e.DetailBlocks = domain.DetailBlocks{}
	}
	if e.Questions == nil {
		e.Questions = domain.FormSchema{}
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) CreateWithCredit(ctx context.Context, e *domain.Event) error {
	f.slugs = append(f.slugs, e.Slug)
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		return err
	}
	if f.credits[e.OwnerID] <= 0 {
		return domain.ErrInsufficientCredits
	}
	f.credits[e.OwnerID]--
	f.nextID++
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	for _, e := range f.byID {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, p domain.EventPatch) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.RSVPOpen != nil {
		e.RSVPOpen = *p.RSVPOpen
	}
	if p.DetailBlocks != nil {
		e.DetailBlocks = *p.DetailBlocks
	}
	if p.Questions != nil {
		e.Questions = *p.Questions
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeGuestRepo implements domain.GuestRepository for tests.
type fakeGuestRepo struct {
	guests    map[string]*domain.Guest
	upsertErr error
	upserts   int
	nextID    int
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{guests: make(map[string]*domain.Guest)}
}

func guestKey(eventID, email string) string { return eventID + "|" + email }

func (f *fakeGuestRepo) Upsert(ctx context.Context, g *domain.Guest) (bool, error) {
	f.upserts++
	if f.upsertErr != nil {
		return false, f.upsertErr
	}
	key := guestKey(g.EventID, g.Email)
	if existing, ok := f.guests[key]; ok {
		g.ID = existing.ID
		g.InviteMethod = existing.InviteMethod
		cp := *g
		f.guests[key] = &cp
		return false, nil
	}
	f.nextID++
	g.ID = fmt.Sprintf("guest-%d", f.nextID)
	cp := *g
	f.guests[key] = &cp
	return true, nil
}

func (f *fakeGuestRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Guest, error) {
	if g, ok := f.guests[guestKey(eventID, email)]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGuestRepo) ListByEventID(ctx context.Context, eventID string, filter domain.GuestFilter, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	out := make([]*domain.Guest, 0)
	for _, g := range f.guests {
		if g.EventID != eventID {
			continue
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		out = append(out, g)
	}
	return out, len(out), nil
}

func (f *fakeGuestRepo) Summary(ctx context.Context, eventID string) (*domain.GuestSummary, error) {
	s := &domain.GuestSummary{}
	for _, g := range f.guests {
		if g.EventID != eventID {
			continue
		}
		s.Total++
		switch g.Status {
		case domain.RSVPAttending:
			s.Attending++
			s.Headcount += g.PartySize
		case domain.RSVPMaybe:
			s.Maybe++
		case domain.RSVPNotAttending:
			s.NotAttending++
		default:
			s.Unset++
		}
	}
	return s, nil
}

func (f *fakeGuestRepo) Delete(ctx context.Context, eventID, guestID string) error {
	for k, g := range f.guests {
		if g.EventID == eventID && g.ID == guestID {
			delete(f.guests, k)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeGuestTokens implements domain.GuestTokenSigner with readable tokens.
type fakeGuestTokens struct{}

func (fakeGuestTokens) Sign(eventID, email string) (string, error) {
	return "tok|" + eventID + "|" + email, nil
}

func (fakeGuestTokens) Verify(token, eventID string) (string, error) {
	parts := strings.SplitN(token, "|", 3)
	if len(parts) != 3 || parts[0] != "tok" {
		return "", fmt.Errorf("malformed token: %w", domain.ErrUnauthorized)
	}
	if parts[1] != eventID {
		return "", fmt.Errorf("token was issued for another event: %w", domain.ErrUnauthorized)
	}
	return parts[2], nil
}

// fakeJobQueue implements domain.JobQueue and records what was enqueued.
type fakeJobQueue struct {
	mu            sync.Mutex
	loginCodes    []*domain.LoginCodeEmailData
	welcomes      []*domain.WelcomeMessageEmailData
	confirmations []*domain.RSVPConfirmationEmailData
	invitations   []*domain.InvitationEmailData
	deletions     []string
	err           error
}

func (f *fakeJobQueue) EnqueueLoginCode(ctx context.Context, data *domain.LoginCodeEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.loginCodes = append(f.loginCodes, data)
	return nil
}

func (f *fakeJobQueue) EnqueueWelcome(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.welcomes = append(f.welcomes, data)
	return nil
}

func (f *fakeJobQueue) EnqueueRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, data)
	return nil
}

func (f *fakeJobQueue) EnqueueInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeJobQueue) EnqueueObjectDeletion(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deletions = append(f.deletions, key)
	return nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	getErr    error
	updateErr error
	nextID    int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	f.byID[u.ID] = u
	f.byEmail[strings.ToLower(u.Email)] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.nextID++
	u.ID = fmt.Sprintf("created-%d", f.nextID)
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		// Return a copy so tests can mutate without affecting stored
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	old, ok := f.byID[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if existing, ok := f.byEmail[u.Email]; ok && existing.ID != u.ID {
		return domain.ErrDuplicateEmail
	}
	delete(f.byEmail, old.Email)
	f.add(u)
	return nil
}

// fakeRoleRepo implements domain.RoleRepository for tests.
type fakeRoleRepo struct {
	known  map[string]bool
	grants map[string][]string
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		known:  map[string]bool{domain.RoleOrganizer: true, domain.RoleAdmin: true},
		grants: make(map[string][]string),
	}
}

func (f *fakeRoleRepo) Grant(ctx context.Context, userID, code string) error {
	if !f.known[code] {
		return domain.ErrNotFound
	}
	if !slices.Contains(f.grants[userID], code) {
		f.grants[userID] = append(f.grants[userID], code)
	}
	return nil
}

func (f *fakeRoleRepo) CodesForUser(ctx context.Context, userID string) ([]string, error) {
	return f.grants[userID], nil
}

// fakeLoginCodeRepo keeps the latest code hash per email.
type fakeLoginCodeRepo struct {
	codes     map[string]string
	createErr error
}

func newFakeLoginCodeRepo() *fakeLoginCodeRepo {
	return &fakeLoginCodeRepo{codes: make(map[string]string)}
}

func (f *fakeLoginCodeRepo) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.codes[email] = codeHash
	return nil
}

func (f *fakeLoginCodeRepo) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	if h, ok := f.codes[email]; ok && h == codeHash {
		delete(f.codes, email)
		return true, nil
	}
	return false, nil
}

// fakeLedger implements domain.CreditLedger with the same atomicity as the SQL ledger.
type fakeLedger struct {
	mu         sync.Mutex
	balances   map[string]int
	pending    []*domain.PendingCredit
	deliveries map[string]bool
	applyErr   error
	applied    []domain.CreditGrant
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]int), deliveries: make(map[string]bool)}
}

func (f *fakeLedger) Apply(ctx context.Context, g domain.CreditGrant) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, g)
	if f.applyErr != nil {
		return 0, f.applyErr
	}
	if g.DeliveryID != "" {
		if f.deliveries[g.DeliveryID] {
			return 0, domain.ErrDuplicateDelivery
		}
	}
	balance := 0
	if g.UserID != "" {
		b, ok := f.balances[g.UserID]
		if !ok {
			return 0, domain.ErrUserNotFound
		}
		balance = b + g.Credits
		f.balances[g.UserID] = balance
	} else {
		f.pending = append(f.pending, &domain.PendingCredit{
			ID: fmt.Sprintf("p-%d", len(f.pending)+1), Email: g.Email, Credits: g.Credits, Source: g.Source, ListingID: g.ListingID,
		})
	}
	if g.DeliveryID != "" {
		f.deliveries[g.DeliveryID] = true
	}
	return balance, nil
}

func (f *fakeLedger) ClaimPending(ctx context.Context, userID, email string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claimed := 0
	for _, p := range f.pending {
		if !p.Claimed && strings.EqualFold(p.Email, email) {
			p.Claimed = true
			by := userID
			p.ClaimedBy = &by
			claimed += p.Credits
		}
	}
	f.balances[userID] += claimed
	return claimed, f.balances[userID], nil
}

func (f *fakeLedger) ListPending(ctx context.Context, page domain.PaginationParams) ([]*domain.PendingCredit, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, len(f.pending), nil
}

// fakePackageRepo implements domain.CreditPackageRepository for tests.
type fakePackageRepo struct {
	byListing map[string]*domain.CreditPackage
	getErr    error
}

func newFakePackageRepo(pkgs ...*domain.CreditPackage) *fakePackageRepo {
	f := &fakePackageRepo{byListing: make(map[string]*domain.CreditPackage)}
	for _, p := range pkgs {
		f.byListing[p.ListingID] = p
	}
	return f
}

func (f *fakePackageRepo) GetActiveByListingID(ctx context.Context, listingID string) (*domain.CreditPackage, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if p, ok := f.byListing[listingID]; ok && p.Active {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePackageRepo) List(ctx context.Context) ([]*domain.CreditPackage, error) {
	out := make([]*domain.CreditPackage, 0, len(f.byListing))
	for _, p := range f.byListing {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePackageRepo) Upsert(ctx context.Context, p *domain.CreditPackage) error {
	f.byListing[p.ListingID] = p
	return nil
}

func (f *fakePackageRepo) Deactivate(ctx context.Context, listingID string) error {
	p, ok := f.byListing[listingID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err       error
	sessionID string
	roles     []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, sessionID string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sessionID = sessionID
	f.roles = roles
	return "token-" + userID, nil
}

// fakeSessionCache implements domain.SessionCache for tests.
type fakeSessionCache struct {
	sessions map[string]string
	storeErr error
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{sessions: make(map[string]string)}
}

func (f *fakeSessionCache) Store(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.sessions[sessionID] = userID
	return nil
}

func (f *fakeSessionCache) Lookup(ctx context.Context, sessionID string) (string, error) {
	if id, ok := f.sessions[sessionID]; ok {
		return id, nil
	}
	return "", domain.ErrNotFound
}

func (f *fakeSessionCache) Invalidate(ctx context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

// fakeMediaRepo implements domain.MediaRepository for tests.
type fakeMediaRepo struct {
	photos    map[string]*domain.Photo
	likes     map[string]map[string]bool
	comments  []*domain.PhotoComment
	createErr error
	nextID    int
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{photos: make(map[string]*domain.Photo), likes: make(map[string]map[string]bool)}
}

func (f *fakeMediaRepo) CreatePhoto(ctx context.Context, p *domain.Photo) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	p.ID = fmt.Sprintf("ph-%d", f.nextID)
	p.CreatedAt = time.Now()
	f.photos[p.ID] = p
	return nil
}

func (f *fakeMediaRepo) GetPhoto(ctx context.Context, eventID, photoID string) (*domain.Photo, error) {
	if p, ok := f.photos[photoID]; ok && p.EventID == eventID {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMediaRepo) ListPhotos(ctx context.Context, eventID, actor string, page domain.PaginationParams) ([]*domain.Photo, int, error) {
	out := make([]*domain.Photo, 0)
	for _, p := range f.photos {
		if p.EventID != eventID {
			continue
		}
		cp := *p
		cp.LikeCount = len(f.likes[p.ID])
		cp.LikedByViewer = f.likes[p.ID][actor]
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeMediaRepo) DeletePhoto(ctx context.Context, eventID, photoID string) error {
	if p, ok := f.photos[photoID]; ok && p.EventID == eventID {
		delete(f.photos, photoID)
		return nil
	}
	return domain.ErrNotFound
}

func (f *fakeMediaRepo) Like(ctx context.Context, photoID, actor string) error {
	if f.likes[photoID] == nil {
		f.likes[photoID] = make(map[string]bool)
	}
	f.likes[photoID][actor] = true
	return nil
}

func (f *fakeMediaRepo) Unlike(ctx context.Context, photoID, actor string) error {
	delete(f.likes[photoID], actor)
	return nil
}

func (f *fakeMediaRepo) CreateComment(ctx context.Context, c *domain.PhotoComment) error {
	c.ID = fmt.Sprintf("c-%d", len(f.comments)+1)
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakeMediaRepo) ListComments(ctx context.Context, photoID string, page domain.PaginationParams) ([]*domain.PhotoComment, int, error) {
	out := make([]*domain.PhotoComment, 0)
	for _, c := range f.comments {
		if c.PhotoID == photoID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

// fakeStorage implements domain.ObjectStorage for tests.
type fakeStorage struct {
	puts   []string
	putErr error
}

func (f *fakeStorage) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.puts = append(f.puts, key)
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error { return nil }

// fakeInvitationRepo implements domain.EventInvitationRepository for tests.
type fakeInvitationRepo struct {
	invitations []*domain.EventInvitation
	failFor     string
}

func (f *fakeInvitationRepo) Record(ctx context.Context, inv *domain.EventInvitation) error {
	if inv.Email == f.failFor {
		return errors.New("insert failed")
	}
	for _, existing := range f.invitations {
		if existing.EventID == inv.EventID && existing.Email == inv.Email {
			existing.SendCount++
			existing.SentAt = inv.SentAt
			inv.ID, inv.SendCount = existing.ID, existing.SendCount
			return nil
		}
	}
	inv.ID = fmt.Sprintf("inv-%d", len(f.invitations)+1)
	inv.SendCount = 1
	f.invitations = append(f.invitations, inv)
	return nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.EventInvitation, int, error) {
	out := make([]*domain.EventInvitation, 0)
	for _, inv := range f.invitations {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	return out, len(out), nil
}
