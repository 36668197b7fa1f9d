package controllers

import (
	"bytes"
	"log/slog"
	"net/http"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

// UpdatedDetailsRequest carries questionnaire changes made while answering the RSVP.
// Omitted fields keep their stored value.
type UpdatedDetailsRequest struct {
	PartySize                   *int                      `json:"partySize"`
	PartyMembers                []domain.PartyMember      `json:"partyMembers"`
	MainPersonDietaryPreference *domain.DietaryPreference `json:"mainPersonDietaryPreference"`
	Dec24Attendance             *bool                     `json:"dec24Attendance"`
	Dec25Attendance             *bool                     `json:"dec25Attendance"`
	AccommodationDec23          *bool                     `json:"accommodationDec23"`
	AccommodationDec24          *bool                     `json:"accommodationDec24"`
	AccommodationDec25          *bool                     `json:"accommodationDec25"`
	Concerns                    *string                   `json:"concerns"`
}

// SubmitRSVPRequest is the request body for POST /api/rsvp/{token}/submit.
type SubmitRSVPRequest struct {
	Response       domain.RSVPResponse    `json:"response"`
	Message        string                 `json:"message"`
	UpdatedDetails *UpdatedDetailsRequest `json:"updatedDetails"`
}

// Validate implements Validator.
func (req SubmitRSVPRequest) Validate() map[string]string {
	if req.Response != domain.ResponseYes && req.Response != domain.ResponseNo {
		return map[string]string{"response": "must be yes or no"}
	}
	return nil
}

func (req *SubmitRSVPRequest) submission() *domain.RSVPSubmission {
	sub := &domain.RSVPSubmission{Response: req.Response, Message: req.Message}
	if d := req.UpdatedDetails; d != nil {
		sub.UpdatedDetails = &domain.QuestionnaireUpdate{
			PartySize:                   d.PartySize,
			PartyMembers:                d.PartyMembers,
			MainPersonDietaryPreference: d.MainPersonDietaryPreference,
			Dec24Attendance:             d.Dec24Attendance,
			Dec25Attendance:             d.Dec25Attendance,
			AccommodationDec23:          d.AccommodationDec23,
			AccommodationDec24:          d.AccommodationDec24,
			AccommodationDec25:          d.AccommodationDec25,
			Concerns:                    d.Concerns,
		}
	}
	return sub
}

// ListRSVPsResponse is the data of GET /api/rsvps.
type ListRSVPsResponse struct {
	RSVPs []*domain.RSVPWithGuest `json:"rsvps"`
	Stats *domain.RSVPStats       `json:"stats"`
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// Get godoc
// @Summary RSVP snapshot
// @Description The invited guest's name, party limits, current answer and questionnaire. Tokens of guests that are not approved are not found.
// @Tags rsvp
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} helpers.APIResponse "data contains the RSVP snapshot"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/rsvp/{token} [get]
func (c *RSVPController) Get(w http.ResponseWriter, r *http.Request) {
	token, ok := h.TokenPathValue(w, r, "token")
	if !ok {
		return
	}
	snap, err := c.Service.Snapshot(r.Context(), token)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, snap)
}

// Submit godoc
// @Summary Submit an RSVP
// @Description Records yes or no. updatedDetails changes questionnaire fields; with a yes answer at least one of dec24Attendance or dec25Attendance must be true. Resubmitting overwrites the previous answer.
// @Tags rsvp
// @Accept json
// @Produce json
// @Param token path string true "Invite token"
// @Param body body SubmitRSVPRequest true "RSVP"
// @Success 200 {object} helpers.APIResponse "data contains the stored RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/rsvp/{token}/submit [post]
func (c *RSVPController) Submit(w http.ResponseWriter, r *http.Request) {
	token, ok := h.TokenPathValue(w, r, "token")
	if !ok {
		return
	}
	var req SubmitRSVPRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	rsvp, err := c.Service.Submit(r.Context(), token, req.submission())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// List godoc
// @Summary List RSVPs
// @Description Every RSVP with its guest, plus totals.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains rsvps and stats"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/rsvps [get]
func (c *RSVPController) List(w http.ResponseWriter, r *http.Request) {
	list, stats, err := c.Service.List(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListRSVPsResponse{RSVPs: list, Stats: stats})
}

// Export godoc
// @Summary Export RSVPs as CSV
// @Description One row per guest with questionnaire answers and the latest RSVP message.
// @Tags rsvp
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file "rsvps.csv"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/rsvps/export [get]
func (c *RSVPController) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := c.Service.ExportCSV(r.Context(), &buf); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="rsvps.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// SendReminders godoc
// @Summary Send RSVP reminders
// @Description Emails every approved guest who has not answered yet.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains sent and failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/reminders/send [post]
func (c *RSVPController) SendReminders(w http.ResponseWriter, r *http.Request) {
	res, err := c.Service.SendReminders(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, res)
}
