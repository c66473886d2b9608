package domain

import (
	"context"
	"time"
)

// MaxInvitationsPerRequest bounds one batch of invitation emails.
const MaxInvitationsPerRequest = 200

// EventInvitation is one invited address per event. Re-inviting the same
// address bumps SendCount and moves SentAt instead of adding a row.
// swagger:model EventInvitation
type EventInvitation struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Email     string    `json:"email"`
	SendCount int       `json:"send_count"`
	SentAt    time.Time `json:"sent_at"`
}

// InvitationBatchResult reports a batch send.
// swagger:model InvitationBatchResult
type InvitationBatchResult struct {
	Sent    int      `json:"sent"`
	Invalid []string `json:"invalid"`
	Failed  []string `json:"failed"`
}

// EventInvitationRepository defines storage operations for event invitations.
type EventInvitationRepository interface {
	// Record inserts or refreshes the invitation and fills ID and SendCount.
	Record(ctx context.Context, inv *EventInvitation) error
	ListByEventID(ctx context.Context, eventID string, page PaginationParams) ([]*EventInvitation, int, error)
}

// InvitationService sends invitation emails for an owner's event.
type InvitationService interface {
	SendInvitations(ctx context.Context, eventID, ownerID string, emails []string) (*InvitationBatchResult, error)
	ListInvitations(ctx context.Context, eventID, ownerID string, page PaginationParams) ([]*EventInvitation, int, error)
}
