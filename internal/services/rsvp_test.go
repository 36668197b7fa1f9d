package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"weddingsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type rsvpFixture struct {
	guests   *fakeGuestRepo
	rsvps    *fakeRSVPRepo
	notifier *fakeNotifier
	svc      domain.RSVPService
}

func newRSVPFixture() *rsvpFixture {
	guests := newFakeGuestRepo()
	rsvps := newFakeRSVPRepo(guests)
	notifier := &fakeNotifier{}
	return &rsvpFixture{
		guests:   guests,
		rsvps:    rsvps,
		notifier: notifier,
		svc:      NewRSVPService(guests, rsvps, notifier, testLogger, testTimeout),
	}
}

func (f *rsvpFixture) invited(token string) *domain.Guest {
	return f.guests.add(&domain.Guest{
		FirstName:          "Ann",
		LastName:           "Lee",
		Email:              "ann@example.com",
		RegistrationStatus: domain.RegistrationApproved,
		RSVPStatus:         domain.RSVPPending,
		MaxPartySize:       domain.DefaultMaxPartySize,
		InviteToken:        token,
		Questionnaire:      domain.Questionnaire{PartySize: 1, PartyMembers: []domain.PartyMember{}},
	})
}

func TestRSVPService_Snapshot(t *testing.T) {
	ctx := context.Background()
	f := newRSVPFixture()
	f.invited("inv-1")
	f.guests.add(&domain.Guest{RegistrationStatus: domain.RegistrationPending, InviteToken: "inv-pending"})

	snap, err := f.svc.Snapshot(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", snap.FirstName)
	assert.Equal(t, domain.DefaultMaxPartySize, snap.MaxPartySize)
	assert.False(t, snap.HasRSVP)
	assert.Equal(t, domain.RSVPPending, snap.RSVPStatus)

	for _, token := range []string{"", "unknown", "inv-pending"} {
		_, err := f.svc.Snapshot(ctx, token)
		require.ErrorIs(t, err, domain.ErrNotFound, token)
	}
}

func TestRSVPService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid response", func(t *testing.T) {
		f := newRSVPFixture()
		f.invited("inv-1")
		_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{Response: "maybe"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, f.rsvps.byGuest)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newRSVPFixture()
		_, err := f.svc.Submit(ctx, "nope", &domain.RSVPSubmission{Response: domain.ResponseYes})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("yes without details keeps questionnaire", func(t *testing.T) {
		f := newRSVPFixture()
		g := f.invited("inv-1")

		r, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{Response: domain.ResponseYes, Message: "  See you!  "})
		require.NoError(t, err)
		assert.Equal(t, domain.ResponseYes, r.Response)
		assert.Equal(t, 1, r.PartySize)
		assert.Equal(t, "See you!", r.Message)
		assert.Equal(t, domain.RSVPYes, f.guests.byID[g.ID].RSVPStatus)
		assert.Equal(t, []string{g.ID}, f.notifier.confirmed)
	})

	t.Run("partial details merge into stored questionnaire", func(t *testing.T) {
		f := newRSVPFixture()
		g := f.invited("inv-1")
		f.guests.byID[g.ID].AccommodationDec23 = true
		f.guests.byID[g.ID].Concerns = "gluten"

		_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
			Response: domain.ResponseYes,
			UpdatedDetails: &domain.QuestionnaireUpdate{
				PartySize:       ptr(3),
				Dec24Attendance: ptr(true),
			},
		})
		require.NoError(t, err)

		stored := f.guests.byID[g.ID]
		assert.Equal(t, 3, stored.PartySize)
		assert.Len(t, stored.PartyMembers, 2)
		assert.True(t, stored.Dec24Attendance)
		assert.True(t, stored.AccommodationDec23)
		assert.Equal(t, "gluten", stored.Concerns)
		assert.Equal(t, 3, stored.MaxPartySize)
		assert.Equal(t, 3, f.rsvps.byGuest[g.ID].PartySize)
	})

	t.Run("attendance flags present must attend one day", func(t *testing.T) {
		for _, resp := range []domain.RSVPResponse{domain.ResponseYes, domain.ResponseNo} {
			f := newRSVPFixture()
			g := f.invited("inv-1")

			_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
				Response: resp,
				UpdatedDetails: &domain.QuestionnaireUpdate{
					Dec24Attendance: ptr(false),
					Dec25Attendance: ptr(false),
				},
			})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr, resp)
			assert.Contains(t, verr.Fields, "attendance")
			assert.Equal(t, domain.RSVPPending, f.guests.byID[g.ID].RSVPStatus)
			assert.Empty(t, f.rsvps.byGuest)
			assert.Empty(t, f.notifier.confirmed)
		}
	})

	t.Run("one flag present with stored day attended passes", func(t *testing.T) {
		f := newRSVPFixture()
		g := f.invited("inv-1")
		f.guests.byID[g.ID].Dec25Attendance = true

		_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
			Response:       domain.ResponseYes,
			UpdatedDetails: &domain.QuestionnaireUpdate{Dec24Attendance: ptr(false)},
		})
		require.NoError(t, err)
		assert.False(t, f.guests.byID[g.ID].Dec24Attendance)
		assert.True(t, f.guests.byID[g.ID].Dec25Attendance)
	})

	t.Run("details without attendance flags skip the rule", func(t *testing.T) {
		for _, resp := range []domain.RSVPResponse{domain.ResponseYes, domain.ResponseNo} {
			f := newRSVPFixture()
			g := f.invited("inv-1")

			_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
				Response:       resp,
				UpdatedDetails: &domain.QuestionnaireUpdate{Concerns: ptr("none")},
			})
			require.NoError(t, err, resp)
			assert.Equal(t, "none", f.guests.byID[g.ID].Concerns)
			assert.Equal(t, domain.RSVPStatus(resp), f.guests.byID[g.ID].RSVPStatus)
		}
	})

	t.Run("shrinking party truncates members", func(t *testing.T) {
		f := newRSVPFixture()
		g := f.invited("inv-1")
		f.guests.byID[g.ID].PartySize = 3
		f.guests.byID[g.ID].MaxPartySize = 3
		f.guests.byID[g.ID].PartyMembers = []domain.PartyMember{
			{FirstName: "Bo", DietaryPreference: domain.DietaryVeg},
			{FirstName: "Cy"},
		}

		r, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
			Response:       domain.ResponseYes,
			UpdatedDetails: &domain.QuestionnaireUpdate{PartySize: ptr(1)},
		})
		require.NoError(t, err)

		stored := f.guests.byID[g.ID]
		assert.Equal(t, 1, stored.PartySize)
		assert.Empty(t, stored.PartyMembers)
		assert.Equal(t, 3, stored.MaxPartySize)
		assert.Equal(t, 1, r.PartySize)
	})

	t.Run("party above ten is rejected", func(t *testing.T) {
		f := newRSVPFixture()
		f.invited("inv-1")

		_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
			Response:       domain.ResponseYes,
			UpdatedDetails: &domain.QuestionnaireUpdate{PartySize: ptr(11), Dec25Attendance: ptr(true)},
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "partySize")
	})

	t.Run("resubmission overwrites and max party size never shrinks", func(t *testing.T) {
		f := newRSVPFixture()
		g := f.invited("inv-1")

		_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
			Response:       domain.ResponseYes,
			UpdatedDetails: &domain.QuestionnaireUpdate{PartySize: ptr(5), Dec25Attendance: ptr(true)},
		})
		require.NoError(t, err)
		first := f.rsvps.byGuest[g.ID].ID

		r, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{
			Response:       domain.ResponseNo,
			UpdatedDetails: &domain.QuestionnaireUpdate{PartySize: ptr(1)},
		})
		require.NoError(t, err)
		assert.Equal(t, first, r.ID)
		assert.Len(t, f.rsvps.byGuest, 1)

		stored := f.guests.byID[g.ID]
		assert.Equal(t, domain.RSVPNo, stored.RSVPStatus)
		assert.Equal(t, 1, stored.PartySize)
		assert.Empty(t, stored.PartyMembers)
		assert.Equal(t, 5, stored.MaxPartySize)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newRSVPFixture()
		f.invited("inv-1")
		f.rsvps.submitErr = errBoom

		_, err := f.svc.Submit(ctx, "inv-1", &domain.RSVPSubmission{Response: domain.ResponseNo})
		require.ErrorIs(t, err, errBoom)
		assert.Empty(t, f.notifier.confirmed)
	})
}

func TestRSVPService_List(t *testing.T) {
	f := newRSVPFixture()
	g := f.invited("inv-1")
	f.rsvps.byGuest[g.ID] = &domain.RSVP{ID: "r1", GuestID: g.ID, Response: domain.ResponseYes, PartySize: 2}
	f.rsvps.stats = &domain.RSVPStats{Total: 1, Yes: 1, TotalAttending: 2}

	list, stats, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, g.ID, list[0].Guest.ID)
	assert.Equal(t, 2, stats.TotalAttending)
}

func TestRSVPService_ExportCSV(t *testing.T) {
	f := newRSVPFixture()
	g := f.invited("inv-1")
	stored := f.guests.byID[g.ID]
	stored.Phone = "+15550100"
	stored.RSVPStatus = domain.RSVPYes
	stored.PartySize = 2
	stored.MainPersonDietaryPreference = domain.DietaryVeg
	stored.PartyMembers = []domain.PartyMember{{FirstName: "Raj", LastName: "Lee", DietaryPreference: domain.DietaryNonVeg}}
	stored.Dec24Attendance = true
	stored.AccommodationDec24 = true
	stored.Concerns = "wheelchair, ramp"
	respondedAt := time.Date(2025, 11, 2, 18, 30, 0, 0, time.UTC)
	f.rsvps.byGuest[g.ID] = &domain.RSVP{Response: domain.ResponseYes, Message: "Yay", RespondedAt: respondedAt}
	f.guests.add(&domain.Guest{FirstName: "Bo", LastName: "Kim", RSVPStatus: domain.RSVPPending, Questionnaire: domain.Questionnaire{PartySize: 1}})

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{
		"Ann", "Lee", "ann@example.com", "+15550100", "yes", "2",
		"veg", "Raj Lee", "non-veg",
		"Yes", "No", "No", "Yes", "No",
		"wheelchair, ramp", "Yay", "2025-11-02 18:30:00",
	}, records[1])
	assert.Equal(t, "Bo", records[2][0])
	assert.Equal(t, "", records[2][15])
	assert.Equal(t, "", records[2][16])
}

func TestRSVPService_SendReminders(t *testing.T) {
	f := newRSVPFixture()
	a := f.invited("inv-a")
	b := f.invited("inv-b")
	answered := f.invited("inv-c")
	f.guests.byID[answered.ID].RSVPStatus = domain.RSVPNo
	f.guests.add(&domain.Guest{RegistrationStatus: domain.RegistrationPending, RSVPStatus: domain.RSVPPending})
	f.notifier.reminderErr = map[string]error{b.ID: errBoom}

	res, err := f.svc.SendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, []string{b.ID}, res.Failed)
	assert.Equal(t, []string{a.ID}, f.notifier.reminded)
}
