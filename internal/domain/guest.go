package domain

import (
	"context"
	"net/mail"
	"strings"
	"time"
)

// RegistrationStatus is the admin review state of a guest registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// RSVPStatus is the guest's attendance answer.
type RSVPStatus string

const (
	RSVPPending RSVPStatus = "pending"
	RSVPYes     RSVPStatus = "yes"
	RSVPNo      RSVPStatus = "no"
)

// DietaryPreference is veg, non-veg or unset.
type DietaryPreference string

const (
	DietaryUnset  DietaryPreference = ""
	DietaryVeg    DietaryPreference = "veg"
	DietaryNonVeg DietaryPreference = "non-veg"
)

// Valid reports whether d is one of the known preferences.
func (d DietaryPreference) Valid() bool {
	switch d {
	case DietaryUnset, DietaryVeg, DietaryNonVeg:
		return true
	}
	return false
}

const (
	// MaxPartySize is the largest party a single guest may bring, main person included.
	MaxPartySize = 10
	// DefaultMaxPartySize is the party size a new guest is allowed before editing their RSVP.
	DefaultMaxPartySize = 2
)

// PartyMember is an additional person attending with the main guest.
type PartyMember struct {
	FirstName         string            `json:"firstName"`
	LastName          string            `json:"lastName"`
	DietaryPreference DietaryPreference `json:"dietaryPreference"`
}

// Questionnaire holds the attendance details a guest provides at registration or RSVP time.
type Questionnaire struct {
	PartySize                   int               `json:"partySize"`
	PartyMembers                []PartyMember     `json:"partyMembers"`
	MainPersonDietaryPreference DietaryPreference `json:"mainPersonDietaryPreference"`
	Dec24Attendance             bool              `json:"dec24Attendance"`
	Dec25Attendance             bool              `json:"dec25Attendance"`
	AccommodationDec23          bool              `json:"accommodationDec23"`
	AccommodationDec24          bool              `json:"accommodationDec24"`
	AccommodationDec25          bool              `json:"accommodationDec25"`
	Concerns                    string            `json:"concerns"`
}

// Normalize clamps a missing party size to one and sizes PartyMembers to PartySize-1.
func (q *Questionnaire) Normalize() {
	if q.PartySize < 1 {
		q.PartySize = 1
	}
	q.PartyMembers = ResizeParty(q.PartyMembers, q.PartySize)
}

// Validate adds questionnaire failures to v. requireAttendance enforces that
// at least one of the two event days is attended.
func (q *Questionnaire) Validate(v *ValidationError, requireAttendance bool) {
	if q.PartySize > MaxPartySize {
		v.Add("partySize", "must be at most 10")
	}
	if q.PartySize < 0 {
		v.Add("partySize", "must not be negative")
	}
	if !q.MainPersonDietaryPreference.Valid() {
		v.Add("mainPersonDietaryPreference", "must be veg or non-veg")
	}
	for _, m := range q.PartyMembers {
		if !m.DietaryPreference.Valid() {
			v.Add("partyMembers", "dietaryPreference must be veg or non-veg")
			break
		}
	}
	if requireAttendance && !q.Dec24Attendance && !q.Dec25Attendance {
		v.Add("attendance", "select at least one of Dec 24 or Dec 25")
	}
}

// QuestionnaireUpdate is a partial questionnaire; nil fields keep the current value.
type QuestionnaireUpdate struct {
	PartySize                   *int
	PartyMembers                []PartyMember
	MainPersonDietaryPreference *DietaryPreference
	Dec24Attendance             *bool
	Dec25Attendance             *bool
	AccommodationDec23          *bool
	AccommodationDec24          *bool
	AccommodationDec25          *bool
	Concerns                    *string
}

// SetsAttendance reports whether the update carries either day's attendance flag.
func (u *QuestionnaireUpdate) SetsAttendance() bool {
	return u.Dec24Attendance != nil || u.Dec25Attendance != nil
}

// ApplyTo returns q with the update's non-nil fields applied.
func (u *QuestionnaireUpdate) ApplyTo(q Questionnaire) Questionnaire {
	if u.PartySize != nil {
		q.PartySize = *u.PartySize
	}
	if u.PartyMembers != nil {
		q.PartyMembers = u.PartyMembers
	}
	if u.MainPersonDietaryPreference != nil {
		q.MainPersonDietaryPreference = *u.MainPersonDietaryPreference
	}
	if u.Dec24Attendance != nil {
		q.Dec24Attendance = *u.Dec24Attendance
	}
	if u.Dec25Attendance != nil {
		q.Dec25Attendance = *u.Dec25Attendance
	}
	if u.AccommodationDec23 != nil {
		q.AccommodationDec23 = *u.AccommodationDec23
	}
	if u.AccommodationDec24 != nil {
		q.AccommodationDec24 = *u.AccommodationDec24
	}
	if u.AccommodationDec25 != nil {
		q.AccommodationDec25 = *u.AccommodationDec25
	}
	if u.Concerns != nil {
		q.Concerns = *u.Concerns
	}
	return q
}

// ResizeParty returns members sized to partySize-1: blank members are appended
// when the party grows and trailing members are dropped when it shrinks.
func ResizeParty(members []PartyMember, partySize int) []PartyMember {
	want := partySize - 1
	if want < 0 {
		want = 0
	}
	out := make([]PartyMember, want)
	copy(out, members)
	return out
}

// Guest is a registered wedding guest.
// swagger:model Guest
type Guest struct {
	ID                 string             `json:"id"`
	FirstName          string             `json:"firstName"`
	LastName           string             `json:"lastName"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone"`
	RegistrationStatus RegistrationStatus `json:"registrationStatus"`
	RSVPStatus         RSVPStatus         `json:"rsvpStatus"`
	MaxPartySize       int                `json:"maxPartySize"`
	Questionnaire
	InviteToken      string     `json:"inviteToken,omitempty"`
	GuestPortalToken string     `json:"guestPortalToken,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (g *Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// HasRSVP reports whether the guest has answered yes or no.
func (g *Guest) HasRSVP() bool {
	return g.RSVPStatus == RSVPYes || g.RSVPStatus == RSVPNo
}

// Registration is the public sign-up payload.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Questionnaire
	// AttendanceProvided is set when the registrant answered either day's attendance.
	AttendanceProvided bool
}

// Validate returns a *ValidationError listing every failing field, or nil.
func (r *Registration) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(r.FirstName) == "" {
		v.Add("firstName", "is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		v.Add("lastName", "is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		v.Add("email", "is required")
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		v.Add("email", "must be a valid email address")
	}
	r.Questionnaire.Validate(v, r.AttendanceProvided)
	return v.Err()
}

// GuestRepository persists guests and runs the cascading deletes.
type GuestRepository interface {
	Create(ctx context.Context, g *Guest) error
	GetByID(ctx context.Context, id string) (*Guest, error)
	GetByInviteToken(ctx context.Context, token string) (*Guest, error)
	GetByPortalToken(ctx context.Context, token string) (*Guest, error)
	List(ctx context.Context) ([]*Guest, error)
	ListByRegistrationStatus(ctx context.Context, status RegistrationStatus) ([]*Guest, error)
	// UpdateRegistration writes g's registration fields only if the stored status is still from.
	// It returns ErrConflict when the status has moved on.
	UpdateRegistration(ctx context.Context, g *Guest, from RegistrationStatus) error
	// MissingIDs returns the ids that do not match any guest.
	MissingIDs(ctx context.Context, ids []string) ([]string, error)
	// DeleteCascade removes the guests with their RSVPs, messages and photos in one transaction
	// and returns the storage keys of the removed photos.
	DeleteCascade(ctx context.Context, ids []string) ([]string, error)
	// DeleteAllCascade is DeleteCascade for every guest.
	DeleteAllCascade(ctx context.Context) ([]string, error)
}

// GuestPortal is the subset of a guest exposed through the portal token.
type GuestPortal struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// SendResult summarises a notification batch.
type SendResult struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// GuestService defines registration, review and guest-level administration.
type GuestService interface {
	Register(ctx context.Context, reg *Registration) (*Guest, error)
	List(ctx context.Context) ([]*Guest, error)
	ListPending(ctx context.Context) ([]*Guest, error)
	Approve(ctx context.Context, id string) (*Guest, error)
	Reject(ctx context.Context, id string) (*Guest, error)
	DeleteSelected(ctx context.Context, ids []string) (int, error)
	DeleteAll(ctx context.Context) error
	Portal(ctx context.Context, token string) (*GuestPortal, error)
	SendInvitations(ctx context.Context, ids []string) (*SendResult, error)
}
