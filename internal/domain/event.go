package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Theme holds the organizer's design settings. They are stored verbatim and never interpreted server-side.
type Theme struct {
	Template     string `json:"template,omitempty"`
	PrimaryColor string `json:"primary_color,omitempty"`
	Font         string `json:"font,omitempty"`
}

func (t Theme) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *Theme) Scan(value any) error {
	return scanJSON(value, t)
}

// Event is an organizer's invitation page.
// swagger:model Event
type Event struct {
	ID              string       `json:"id"`
	OwnerID         string       `json:"owner_id"`
	Title           string       `json:"title"`
	Slug            string       `json:"slug"`
	StartsAt        *time.Time   `json:"starts_at,omitempty"`
	Location        *string      `json:"location,omitempty"`
	Message         *string      `json:"message,omitempty"`
	CoverImageURL   *string      `json:"cover_image_url,omitempty"`
	PrimaryMediaURL *string      `json:"primary_media_url,omitempty"`
	Theme           Theme        `json:"theme"`
	DetailBlocks    DetailBlocks `json:"detail_blocks"`
	Questions       FormSchema   `json:"custom_questions"`
	RSVPOpen        bool         `json:"rsvp_open"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewEvent returns a new Event open for RSVPs. ID and Slug are set on create.
func NewEvent(ownerID, title string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		OwnerID:      ownerID,
		Title:        title,
		DetailBlocks: DetailBlocks{},
		Questions:    FormSchema{},
		RSVPOpen:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// EventPatch lists the fields of a partial event update. Nil fields are unchanged.
type EventPatch struct {
	Title           *string
	StartsAt        *time.Time
	Location        *string
	Message         *string
	CoverImageURL   *string
	PrimaryMediaURL *string
	Theme           *Theme
	DetailBlocks    *DetailBlocks
	Questions       *FormSchema
	RSVPOpen        *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.StartsAt == nil && p.Location == nil && p.Message == nil &&
		p.CoverImageURL == nil && p.PrimaryMediaURL == nil && p.Theme == nil &&
		p.DetailBlocks == nil && p.Questions == nil && p.RSVPOpen == nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	// CreateWithCredit debits one credit from the owner and inserts the event in one transaction.
	// Returns ErrInsufficientCredits when the owner's balance is zero.
	CreateWithCredit(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// PublicEventView is what a visitor of the shared link receives.
// swagger:model PublicEventView
type PublicEventView struct {
	Event  *Event `json:"event"`
	Access Access `json:"access"`
}

// EventService defines organizer and public operations on events.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	GetPublicEvent(ctx context.Context, slug string, viewer Viewer) (*PublicEventView, error)
	ListMyEvents(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
}

func scanJSON(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
