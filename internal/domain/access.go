package domain

import "context"

// AccessRole classifies a visitor of an event page.
type AccessRole string

const (
	AccessOwner          AccessRole = "owner"
	AccessReturningGuest AccessRole = "returning_guest"
	AccessAnonymous      AccessRole = "anonymous"
)

// Viewer is the explicit identity a request carries: an optional session user and an optional guest token.
type Viewer struct {
	UserID     string
	GuestToken string
}

// Access is the resolved classification plus what it allows.
// swagger:model Access
type Access struct {
	Role           AccessRole `json:"role"`
	GuestEmail     string     `json:"guest_email,omitempty"`
	GuestName      string     `json:"guest_name,omitempty"`
	CanViewGallery bool       `json:"can_view_gallery"`
	CanEditRSVP    bool       `json:"can_edit_rsvp"`
	CanManage      bool       `json:"can_manage"`

	userID string
}

// NewOwnerAccess grants management and gallery rights to the event owner.
func NewOwnerAccess(userID string) Access {
	return Access{Role: AccessOwner, CanViewGallery: true, CanManage: true, userID: userID}
}

// NewGuestAccess grants gallery and RSVP edit rights to a guest who already responded.
func NewGuestAccess(email, name string) Access {
	return Access{Role: AccessReturningGuest, GuestEmail: email, GuestName: name, CanViewGallery: true, CanEditRSVP: true}
}

// AnonymousAccess grants nothing beyond the public event page and the RSVP form.
func AnonymousAccess() Access {
	return Access{Role: AccessAnonymous}
}

// ActorKey identifies the viewer on likes and comments: "user:<id>" or "guest:<email>".
func (a Access) ActorKey() string {
	switch a.Role {
	case AccessOwner:
		return "user:" + a.userID
	case AccessReturningGuest:
		return "guest:" + a.GuestEmail
	default:
		return ""
	}
}

// GuestTokenSigner issues and verifies the event-scoped "already responded" token.
type GuestTokenSigner interface {
	Sign(eventID, email string) (string, error)
	// Verify returns the email the token was issued for. Tokens for a different event fail.
	Verify(token, eventID string) (string, error)
}

// AccessService resolves who a viewer is for a given event.
type AccessService interface {
	Resolve(ctx context.Context, event *Event, viewer Viewer) (Access, error)
	ResolveByEventID(ctx context.Context, eventID string, viewer Viewer) (*Event, Access, error)
}
