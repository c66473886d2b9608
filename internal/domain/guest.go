package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// RSVPStatus is a guest's attendance answer.
type RSVPStatus string

const (
	RSVPAttending    RSVPStatus = "attending"
	RSVPMaybe        RSVPStatus = "maybe"
	RSVPNotAttending RSVPStatus = "not_attending"
	RSVPUnset        RSVPStatus = "unset"
)

// ParseRSVPStatus accepts the enum values; an empty string means unset.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	switch st := RSVPStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return RSVPUnset, nil
	case RSVPAttending, RSVPMaybe, RSVPNotAttending, RSVPUnset:
		return st, nil
	default:
		return "", NewFieldError("status", "must be one of attending, maybe, not_attending, unset")
	}
}

// InviteMethod records how the guest received the invitation.
type InviteMethod string

const (
	InviteByLink   InviteMethod = "link"
	InviteByEmail  InviteMethod = "email"
	InviteManually InviteMethod = "manual"
)

// ParseInviteMethod defaults to link when s is empty.
func ParseInviteMethod(s string) (InviteMethod, error) {
	switch m := InviteMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return InviteByLink, nil
	case InviteByLink, InviteByEmail, InviteManually:
		return m, nil
	default:
		return "", NewFieldError("invite_method", "must be one of link, email, manual")
	}
}

// Answers are a guest's custom-question answers keyed by question id, stored as JSONB.
type Answers map[string]string

func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(a))
}

func (a *Answers) Scan(value any) error {
	if value == nil {
		*a = Answers{}
		return nil
	}
	return scanJSON(value, a)
}

// Guest is an RSVP record. (EventID, Email) is unique.
// swagger:model Guest
type Guest struct {
	ID           string       `json:"id"`
	EventID      string       `json:"event_id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Status       RSVPStatus   `json:"status"`
	PartySize    int          `json:"party_size"`
	Note         string       `json:"note"`
	Answers      Answers      `json:"answers"`
	InviteMethod InviteMethod `json:"invite_method"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// RSVPSubmission is the raw form a visitor submits.
type RSVPSubmission struct {
	Name             string
	Email            string
	Status           string
	AdditionalGuests *int
	Note             string
	Answers          map[string]string
	InviteMethod     string
}

// RSVPResult is returned after a successful submission. GuestToken lets the visitor come back as a returning guest.
// swagger:model RSVPResult
type RSVPResult struct {
	Guest      *Guest `json:"guest"`
	GuestToken string `json:"guest_token"`
	Created    bool   `json:"created"`
}

// GuestFilter narrows organizer guest listings.
type GuestFilter struct {
	Status RSVPStatus
}

// GuestSummary aggregates an event's responses. Headcount sums the party sizes of attending guests.
// swagger:model GuestSummary
type GuestSummary struct {
	Total        int `json:"total"`
	Attending    int `json:"attending"`
	Maybe        int `json:"maybe"`
	NotAttending int `json:"not_attending"`
	Unset        int `json:"unset"`
	Headcount    int `json:"headcount"`
}

// GuestRepository defines storage operations for guests.
type GuestRepository interface {
	// Upsert inserts or updates the guest keyed on (EventID, Email) and fills ID and timestamps.
	// created reports whether a new row was inserted.
	Upsert(ctx context.Context, g *Guest) (created bool, err error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Guest, error)
	ListByEventID(ctx context.Context, eventID string, filter GuestFilter, page PaginationParams) ([]*Guest, int, error)
	Summary(ctx context.Context, eventID string) (*GuestSummary, error)
	Delete(ctx context.Context, eventID, guestID string) error
}

// RSVPService handles the public RSVP form.
type RSVPService interface {
	Submit(ctx context.Context, eventID string, sub RSVPSubmission, guestToken string) (*RSVPResult, error)
	GetMine(ctx context.Context, eventID, guestToken string) (*Guest, error)
}

// GuestService covers the organizer's guest management.
type GuestService interface {
	ListGuests(ctx context.Context, eventID, ownerID string, filter GuestFilter, page PaginationParams) ([]*Guest, int, error)
	Summary(ctx context.Context, eventID, ownerID string) (*GuestSummary, error)
	DeleteGuest(ctx context.Context, eventID, ownerID, guestID string) error
}
