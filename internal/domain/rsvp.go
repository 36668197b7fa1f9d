package domain

import (
	"context"
	"io"
	"time"
)

// RSVPResponse is the answer a guest submits.
type RSVPResponse string

const (
	ResponseYes RSVPResponse = "yes"
	ResponseNo  RSVPResponse = "no"
)

// RSVP is the stored answer of a guest. A guest has at most one; resubmission overwrites it.
type RSVP struct {
	ID          string       `json:"id"`
	GuestID     string       `json:"guestId"`
	Response    RSVPResponse `json:"response"`
	PartySize   int          `json:"partySize"`
	Message     string       `json:"message"`
	RespondedAt time.Time    `json:"respondedAt"`
}

// RSVPWithGuest is an RSVP joined with its guest for the admin list.
type RSVPWithGuest struct {
	RSVP
	Guest *Guest `json:"guest"`
}

// RSVPStats aggregates RSVP answers over all guests.
type RSVPStats struct {
	Total          int `json:"total"`
	Yes            int `json:"yes"`
	No             int `json:"no"`
	Pending        int `json:"pending"`
	TotalAttending int `json:"totalAttending"`
}

// RSVPSubmission is what a guest posts to the RSVP endpoint.
type RSVPSubmission struct {
	Response       RSVPResponse
	Message        string
	UpdatedDetails *QuestionnaireUpdate
}

// RSVPSnapshot is the guest view behind an invite token.
type RSVPSnapshot struct {
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	MaxPartySize int        `json:"maxPartySize"`
	HasRSVP      bool       `json:"hasRsvp"`
	RSVPStatus   RSVPStatus `json:"rsvpStatus"`
	Questionnaire
}

// RSVPRepository persists RSVPs.
type RSVPRepository interface {
	// Submit writes the guest's RSVP fields and upserts the RSVP in one transaction.
	Submit(ctx context.Context, g *Guest, r *RSVP) error
	ListWithGuests(ctx context.Context) ([]*RSVPWithGuest, error)
	// ByGuest returns every RSVP keyed by guest id.
	ByGuest(ctx context.Context) (map[string]*RSVP, error)
	Stats(ctx context.Context) (*RSVPStats, error)
}

// RSVPService handles guest answers and the admin RSVP views.
type RSVPService interface {
	Snapshot(ctx context.Context, token string) (*RSVPSnapshot, error)
	Submit(ctx context.Context, token string, sub *RSVPSubmission) (*RSVP, error)
	List(ctx context.Context) ([]*RSVPWithGuest, *RSVPStats, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	SendReminders(ctx context.Context) (*SendResult, error)
}
