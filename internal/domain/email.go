package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// TextSender delivers a short plain-text message to a phone number.
type TextSender interface {
	SendText(ctx context.Context, phone, body string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the RSVP invitation sent on approval.
type InvitationEmailData struct {
	FirstName string
	RSVPURL   string
	PortalURL string
}

// ReminderEmailData holds data for the RSVP reminder.
type ReminderEmailData struct {
	FirstName string
	RSVPURL   string
}

// RSVPConfirmationEmailData holds data for the confirmation sent after an RSVP.
type RSVPConfirmationEmailData struct {
	FirstName string
	Attending bool
	PartySize int
	Message   string
	PortalURL string
}

// NotificationService sends the guest-facing notifications of the workflow.
type NotificationService interface {
	SendInvitation(ctx context.Context, g *Guest) error
	SendReminder(ctx context.Context, g *Guest) error
	SendRSVPConfirmation(ctx context.Context, g *Guest, r *RSVP) error
}
