package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/metrics"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{
	"First Name", "Last Name", "Email", "Phone", "RSVP Status", "Party Size",
	"Main Person Dietary", "Party Members", "Party Member Dietaries",
	"Dec 24 Attendance", "Dec 25 Attendance",
	"Accommodation Dec 23", "Accommodation Dec 24", "Accommodation Dec 25",
	"Special Concerns", "RSVP Message", "Responded At",
}

type rsvpService struct {
	guests         domain.GuestRepository
	rsvps          domain.RSVPRepository
	notifier       domain.NotificationService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewRSVPService(
	guests domain.GuestRepository,
	rsvps domain.RSVPRepository,
	notifier domain.NotificationService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RSVPService {
	return &rsvpService{
		guests:         guests,
		rsvps:          rsvps,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// invitedGuest resolves an invite token; tokens of guests that are not approved do not resolve.
func (s *rsvpService) invitedGuest(ctx context.Context, token string) (*domain.Guest, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	g, err := s.guests.GetByInviteToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if g.RegistrationStatus != domain.RegistrationApproved {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (s *rsvpService) Snapshot(ctx context.Context, token string) (*domain.RSVPSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	g, err := s.invitedGuest(ctx, token)
	if err != nil {
		return nil, err
	}
	return &domain.RSVPSnapshot{
		FirstName:     g.FirstName,
		LastName:      g.LastName,
		MaxPartySize:  g.MaxPartySize,
		HasRSVP:       g.HasRSVP(),
		RSVPStatus:    g.RSVPStatus,
		Questionnaire: g.Questionnaire,
	}, nil
}

func (s *rsvpService) Submit(ctx context.Context, token string, sub *domain.RSVPSubmission) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if sub.Response != domain.ResponseYes && sub.Response != domain.ResponseNo {
		v := domain.NewValidationError()
		v.Add("response", "must be yes or no")
		return nil, v
	}
	g, err := s.invitedGuest(ctx, token)
	if err != nil {
		return nil, err
	}

	if sub.UpdatedDetails != nil {
		q := sub.UpdatedDetails.ApplyTo(g.Questionnaire)
		v := domain.NewValidationError()
		q.Validate(v, sub.UpdatedDetails.SetsAttendance())
		if err := v.Err(); err != nil {
			return nil, err
		}
		q.Concerns = strings.TrimSpace(q.Concerns)
		q.Normalize()
		g.Questionnaire = q
	}
	g.MaxPartySize = max(g.MaxPartySize, g.PartySize)
	g.RSVPStatus = domain.RSVPStatus(sub.Response)

	now := time.Now()
	g.UpdatedAt = now
	r := &domain.RSVP{
		GuestID:     g.ID,
		Response:    sub.Response,
		PartySize:   g.PartySize,
		Message:     strings.TrimSpace(sub.Message),
		RespondedAt: now,
	}
	if err := s.rsvps.Submit(ctx, g, r); err != nil {
		return nil, fmt.Errorf("save rsvp: %w", err)
	}
	metrics.RSVPSubmissions.WithLabelValues(string(sub.Response)).Inc()

	if err := s.notifier.SendRSVPConfirmation(ctx, g, r); err != nil {
		s.logger.WarnContext(ctx, "rsvp confirmation not sent", "guest_id", g.ID, "err", err)
	}
	return r, nil
}

func (s *rsvpService) List(ctx context.Context) ([]*domain.RSVPWithGuest, *domain.RSVPStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.rsvps.ListWithGuests(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list rsvps: %w", err)
	}
	stats, err := s.rsvps.Stats(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("rsvp stats: %w", err)
	}
	return list, stats, nil
}

func (s *rsvpService) ExportCSV(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	guests, err := s.guests.List(ctx)
	if err != nil {
		return fmt.Errorf("list guests: %w", err)
	}
	byGuest, err := s.rsvps.ByGuest(ctx)
	if err != nil {
		return fmt.Errorf("list rsvps: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, g := range guests {
		if err := cw.Write(exportRow(g, byGuest[g.ID])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(g *domain.Guest, r *domain.RSVP) []string {
	names := make([]string, 0, len(g.PartyMembers))
	diets := make([]string, 0, len(g.PartyMembers))
	for _, m := range g.PartyMembers {
		names = append(names, strings.TrimSpace(m.FirstName+" "+m.LastName))
		diets = append(diets, string(m.DietaryPreference))
	}
	var message, respondedAt string
	if r != nil {
		message = r.Message
		respondedAt = r.RespondedAt.Format(exportTimeLayout)
	}
	return []string{
		g.FirstName, g.LastName, g.Email, g.Phone, string(g.RSVPStatus), strconv.Itoa(g.PartySize),
		string(g.MainPersonDietaryPreference), strings.Join(names, "; "), strings.Join(diets, "; "),
		yesNo(g.Dec24Attendance), yesNo(g.Dec25Attendance),
		yesNo(g.AccommodationDec23), yesNo(g.AccommodationDec24), yesNo(g.AccommodationDec25),
		g.Concerns, message, respondedAt,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (s *rsvpService) SendReminders(ctx context.Context) (*domain.SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	approved, err := s.guests.ListByRegistrationStatus(ctx, domain.RegistrationApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved guests: %w", err)
	}
	res := &domain.SendResult{Failed: []string{}}
	for _, g := range approved {
		if g.RSVPStatus != domain.RSVPPending {
			continue
		}
		if err := s.notifier.SendReminder(ctx, g); err != nil {
			s.logger.WarnContext(ctx, "reminder not sent", "guest_id", g.ID, "err", err)
			res.Failed = append(res.Failed, g.ID)
			continue
		}
		res.Sent++
	}
	return res, nil
}
