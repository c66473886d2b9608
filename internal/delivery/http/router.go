package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"guestbook/internal/delivery/http/controllers"
	"guestbook/internal/delivery/http/middleware"
	"guestbook/internal/domain"
)

// RouterDeps carries the controllers and auth collaborators the router mounts.
type RouterDeps struct {
	Logger   *slog.Logger
	Verifier domain.TokenVerifier
	Sessions domain.SessionCache
	// WebhookSecret enables X-Signature checks on the purchase webhook when non-empty.
	WebhookSecret string

	Auth        *controllers.AuthController
	Users       *controllers.UserController
	Events      *controllers.EventController
	RSVPs       *controllers.RSVPController
	Guests      *controllers.GuestController
	Invitations *controllers.InvitationController
	Gallery     *controllers.GalleryController
	Purchases   *controllers.PurchaseController
	CreditAdmin *controllers.CreditAdminController
	Health      *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(d RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(d.Verifier, d.Sessions, d.Logger)
	optional := middleware.OptionalAuth(d.Verifier, d.Sessions, d.Logger)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleAdmin)(h))
	}
	signed := middleware.RequireSignature(d.WebhookSecret)

	// Auth
	mux.HandleFunc("POST /auth/login-code", d.Auth.RequestLoginCode)
	mux.HandleFunc("POST /auth/verify", d.Auth.Verify)
	mux.HandleFunc("POST /auth/logout", auth(d.Auth.Logout))

	// Account
	mux.HandleFunc("GET /users/me", auth(d.Users.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(d.Users.UpdateMe))
	mux.HandleFunc("POST /users/me/credits/claim", auth(d.Users.ClaimCredits))

	// Events (host)
	mux.HandleFunc("POST /events", auth(d.Events.CreateEvent))
	mux.HandleFunc("GET /events", auth(d.Events.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(d.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(d.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(d.Events.DeleteEvent))

	// Guest list and invitations (host)
	mux.HandleFunc("GET /events/{eventID}/guests", auth(d.Guests.ListGuests))
	mux.HandleFunc("GET /events/{eventID}/guests/summary", auth(d.Guests.Summary))
	mux.HandleFunc("DELETE /events/{eventID}/guests/{guestID}", auth(d.Guests.DeleteGuest))
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(d.Invitations.SendInvitations))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(d.Invitations.ListInvitations))

	// Public page and RSVP
	mux.HandleFunc("GET /public/events/{slug}", optional(d.Events.GetPublicEvent))
	mux.HandleFunc("POST /events/{eventID}/rsvp", d.RSVPs.Submit)
	mux.HandleFunc("GET /events/{eventID}/rsvp/me", d.RSVPs.GetMine)

	// Gallery: the host by bearer token, guests by X-Guest-Token
	mux.HandleFunc("POST /events/{eventID}/photos", optional(d.Gallery.Upload))
	mux.HandleFunc("GET /events/{eventID}/photos", optional(d.Gallery.ListPhotos))
	mux.HandleFunc("DELETE /events/{eventID}/photos/{photoID}", optional(d.Gallery.DeletePhoto))
	mux.HandleFunc("PUT /events/{eventID}/photos/{photoID}/like", optional(d.Gallery.Like))
	mux.HandleFunc("DELETE /events/{eventID}/photos/{photoID}/like", optional(d.Gallery.Unlike))
	mux.HandleFunc("POST /events/{eventID}/photos/{photoID}/comments", optional(d.Gallery.Comment))
	mux.HandleFunc("GET /events/{eventID}/photos/{photoID}/comments", optional(d.Gallery.ListComments))

	// Purchases
	mux.HandleFunc("POST /webhooks/purchases", signed(d.Purchases.HandleWebhook))
	mux.HandleFunc("GET /admin/credit-packages", admin(d.CreditAdmin.ListPackages))
	mux.HandleFunc("PUT /admin/credit-packages/{listingID}", admin(d.CreditAdmin.SavePackage))
	mux.HandleFunc("DELETE /admin/credit-packages/{listingID}", admin(d.CreditAdmin.DeactivatePackage))
	mux.HandleFunc("GET /admin/pending-credits", admin(d.CreditAdmin.ListPending))

	mux.HandleFunc("GET /healthz", d.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
