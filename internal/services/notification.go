package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"weddingsite/internal/domain"
	"weddingsite/internal/metrics"
)

type notificationService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	texts    domain.TextSender
	baseURL  string
	logger   *slog.Logger
}

// NewNotificationService sends guest notifications by email and, when texts is non-nil and the
// guest left a phone number, by text message as well. Text failures are only logged.
func NewNotificationService(
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	texts domain.TextSender,
	publicBaseURL string,
	logger *slog.Logger,
) domain.NotificationService {
	return &notificationService{
		mailer:   mailer,
		renderer: renderer,
		texts:    texts,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		logger:   logger,
	}
}

func (s *notificationService) rsvpURL(g *domain.Guest) string {
	return s.baseURL + "/rsvp/" + g.InviteToken
}

func (s *notificationService) portalURL(g *domain.Guest) string {
	if g.GuestPortalToken == "" {
		return ""
	}
	return s.baseURL + "/guest-portal/" + g.GuestPortalToken
}

func (s *notificationService) SendInvitation(ctx context.Context, g *domain.Guest) error {
	if g.InviteToken == "" {
		return fmt.Errorf("%w: guest %s has no invite token", domain.ErrConflict, g.ID)
	}
	data := &domain.InvitationEmailData{
		FirstName: g.FirstName,
		RSVPURL:   s.rsvpURL(g),
		PortalURL: s.portalURL(g),
	}
	text := fmt.Sprintf("Hi %s! You're invited to our wedding. Please RSVP: %s", g.FirstName, data.RSVPURL)
	return s.deliver(ctx, "invitation", g, data, text)
}

func (s *notificationService) SendReminder(ctx context.Context, g *domain.Guest) error {
	if g.InviteToken == "" {
		return fmt.Errorf("%w: guest %s has no invite token", domain.ErrConflict, g.ID)
	}
	data := &domain.ReminderEmailData{FirstName: g.FirstName, RSVPURL: s.rsvpURL(g)}
	text := fmt.Sprintf("Hi %s, a friendly reminder to RSVP for our wedding: %s", g.FirstName, data.RSVPURL)
	return s.deliver(ctx, "reminder", g, data, text)
}

func (s *notificationService) SendRSVPConfirmation(ctx context.Context, g *domain.Guest, r *domain.RSVP) error {
	data := &domain.RSVPConfirmationEmailData{
		FirstName: g.FirstName,
		Attending: r.Response == domain.ResponseYes,
		PartySize: r.PartySize,
		Message:   r.Message,
		PortalURL: s.portalURL(g),
	}
	return s.deliver(ctx, "rsvp_confirmation", g, data, "")
}

func (s *notificationService) deliver(ctx context.Context, kind string, g *domain.Guest, data any, text string) error {
	subject, html, body, err := s.renderer.Render(kind, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", kind, err)
	}
	err = s.mailer.Send(ctx, g.Email, subject, html, body)
	metrics.Notifications.WithLabelValues("email", kind, metrics.Result(err)).Inc()
	if err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	if s.texts != nil && text != "" && g.Phone != "" {
		terr := s.texts.SendText(ctx, g.Phone, text)
		metrics.Notifications.WithLabelValues("whatsapp", kind, metrics.Result(terr)).Inc()
		if terr != nil {
			s.logger.WarnContext(ctx, "text notification failed", "kind", kind, "guest_id", g.ID, "err", terr)
		}
	}
	return nil
}
