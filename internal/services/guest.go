package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weddingsite/internal/domain"
	"weddingsite/internal/metrics"
)

type guestService struct {
	guests         domain.GuestRepository
	blobs          domain.BlobStore
	notifier       domain.NotificationService
	logger         *slog.Logger
	contextTimeout time.Duration
	newToken       func() (string, error)
}

func NewGuestService(
	guests domain.GuestRepository,
	blobs domain.BlobStore,
	notifier domain.NotificationService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.GuestService {
	return &guestService{
		guests:         guests,
		blobs:          blobs,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
		newToken:       newCapabilityToken,
	}
}

func (s *guestService) Register(ctx context.Context, reg *domain.Registration) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	q := reg.Questionnaire
	q.Concerns = strings.TrimSpace(q.Concerns)
	q.Normalize()

	now := time.Now()
	g := &domain.Guest{
		FirstName:          reg.FirstName,
		LastName:           reg.LastName,
		Email:              reg.Email,
		Phone:              reg.Phone,
		RegistrationStatus: domain.RegistrationPending,
		RSVPStatus:         domain.RSVPPending,
		MaxPartySize:       max(domain.DefaultMaxPartySize, q.PartySize),
		Questionnaire:      q,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.guests.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	return g, nil
}

func (s *guestService) List(ctx context.Context) ([]*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.guests.List(ctx)
}

func (s *guestService) ListPending(ctx context.Context) ([]*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.guests.ListByRegistrationStatus(ctx, domain.RegistrationPending)
}

func (s *guestService) Approve(ctx context.Context, id string) (*domain.Guest, error) {
	return s.transition(ctx, id, domain.ActionApprove)
}

func (s *guestService) Reject(ctx context.Context, id string) (*domain.Guest, error) {
	return s.transition(ctx, id, domain.ActionReject)
}

// transition applies action through the registration table and runs its effects.
// A failed invitation is logged; the approval itself stands.
func (s *guestService) transition(ctx context.Context, id string, action domain.RegistrationAction) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	g, err := s.guests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get guest: %w", err)
	}
	t, err := domain.NextRegistration(g.RegistrationStatus, action)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if t.Effects.Has(domain.EffectIssueTokens) {
		if g.InviteToken, err = s.newToken(); err != nil {
			return nil, err
		}
		if g.GuestPortalToken, err = s.newToken(); err != nil {
			return nil, err
		}
	}
	if t.Effects.Has(domain.EffectStampApproval) {
		g.ApprovedAt = &now
	}
	g.RegistrationStatus = t.To
	g.UpdatedAt = now
	if err := s.guests.UpdateRegistration(ctx, g, t.From); err != nil {
		return nil, fmt.Errorf("%s guest: %w", action, err)
	}
	metrics.RegistrationTransitions.WithLabelValues(string(action)).Inc()

	if t.Effects.Has(domain.EffectSendInvitation) {
		if err := s.notifier.SendInvitation(ctx, g); err != nil {
			s.logger.WarnContext(ctx, "invitation not sent", "guest_id", g.ID, "err", err)
		}
	}
	return g, nil
}

func (s *guestService) DeleteSelected(ctx context.Context, ids []string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	valid, invalid := validIDs(ids)
	if len(valid)+len(invalid) == 0 {
		v := domain.NewValidationError()
		v.Add("guestIds", "must contain at least one id")
		return 0, v
	}
	missing := invalid
	if len(valid) > 0 {
		unknown, err := s.guests.MissingIDs(ctx, valid)
		if err != nil {
			return 0, fmt.Errorf("check guests: %w", err)
		}
		missing = append(missing, unknown...)
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: guests %s", domain.ErrNotFound, strings.Join(missing, ", "))
	}
	keys, err := s.guests.DeleteCascade(ctx, valid)
	if err != nil {
		return 0, fmt.Errorf("delete guests: %w", err)
	}
	s.deleteBlobs(ctx, keys)
	return len(valid), nil
}

func (s *guestService) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	keys, err := s.guests.DeleteAllCascade(ctx)
	if err != nil {
		return fmt.Errorf("delete all guests: %w", err)
	}
	s.deleteBlobs(ctx, keys)
	return nil
}

// deleteBlobs removes photo objects whose records are already gone.
func (s *guestService) deleteBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "orphaned photo object", "key", key, "err", err)
		}
	}
}

func (s *guestService) Portal(ctx context.Context, token string) (*domain.GuestPortal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if token == "" {
		return nil, domain.ErrNotFound
	}
	g, err := s.guests.GetByPortalToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &domain.GuestPortal{
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Email:     g.Email,
		Phone:     g.Phone,
	}, nil
}

func (s *guestService) SendInvitations(ctx context.Context, ids []string) (*domain.SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	valid, invalid := validIDs(ids)
	res := &domain.SendResult{Failed: append([]string{}, invalid...)}
	for _, id := range valid {
		g, err := s.guests.GetByID(ctx, id)
		if err != nil || g.RegistrationStatus != domain.RegistrationApproved {
			res.Failed = append(res.Failed, id)
			continue
		}
		if err := s.notifier.SendInvitation(ctx, g); err != nil {
			s.logger.WarnContext(ctx, "invitation not sent", "guest_id", id, "err", err)
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Sent++
	}
	return res, nil
}
