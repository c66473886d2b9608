package domain

import "context"

// JobQueue hands work to the background worker. Enqueue failures never undo the caller's write.
type JobQueue interface {
	EnqueueLoginCode(ctx context.Context, data *LoginCodeEmailData) error
	EnqueueWelcome(ctx context.Context, data *WelcomeMessageEmailData) error
	EnqueueRSVPConfirmation(ctx context.Context, data *RSVPConfirmationEmailData) error
	EnqueueInvitation(ctx context.Context, data *InvitationEmailData) error
	EnqueueObjectDeletion(ctx context.Context, key string) error
}
