package domain

import "context"

// OutboundEmail is one rendered message ready for delivery.
// Kind names the template it came from and is attached to the message as a tag.
type OutboundEmail struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Kind    string
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg OutboundEmail) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email          string
	FirstName      string
	ClaimedCredits int
}

// LoginCodeEmailData holds data for the passwordless login code email.
type LoginCodeEmailData struct {
	Email            string
	Code             string
	ExpiresInMinutes int
}

// RSVPConfirmationEmailData is sent to a guest after each RSVP submission.
type RSVPConfirmationEmailData struct {
	Email      string
	GuestName  string
	EventTitle string
	EventURL   string
	Status     RSVPStatus
	PartySize  int
	Updated    bool
}

// InvitationEmailData carries the public link of an event to an invitee.
type InvitationEmailData struct {
	Email      string
	EventTitle string
	HostName   string
	HostEmail  string
	EventURL   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendLoginCode(ctx context.Context, data *LoginCodeEmailData) error
	SendRSVPConfirmation(ctx context.Context, data *RSVPConfirmationEmailData) error
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}
