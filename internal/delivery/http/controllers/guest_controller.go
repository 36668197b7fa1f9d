package controllers

import (
	"log/slog"
	"net/http"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

// RegisterGuestRequest is the request body for POST /api/guests/register.
// Dec24Attendance and Dec25Attendance are pointers so an unanswered question is distinguishable from "no".
type RegisterGuestRequest struct {
	FirstName                   string                   `json:"firstName"`
	LastName                    string                   `json:"lastName"`
	Email                       string                   `json:"email"`
	Phone                       string                   `json:"phone"`
	PartySize                   int                      `json:"partySize"`
	PartyMembers                []domain.PartyMember     `json:"partyMembers"`
	MainPersonDietaryPreference domain.DietaryPreference `json:"mainPersonDietaryPreference"`
	Dec24Attendance             *bool                    `json:"dec24Attendance"`
	Dec25Attendance             *bool                    `json:"dec25Attendance"`
	AccommodationDec23          bool                     `json:"accommodationDec23"`
	AccommodationDec24          bool                     `json:"accommodationDec24"`
	AccommodationDec25          bool                     `json:"accommodationDec25"`
	Concerns                    string                   `json:"concerns"`
}

func (req *RegisterGuestRequest) registration() *domain.Registration {
	return &domain.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Questionnaire: domain.Questionnaire{
			PartySize:                   req.PartySize,
			PartyMembers:                req.PartyMembers,
			MainPersonDietaryPreference: req.MainPersonDietaryPreference,
			Dec24Attendance:             req.Dec24Attendance != nil && *req.Dec24Attendance,
			Dec25Attendance:             req.Dec25Attendance != nil && *req.Dec25Attendance,
			AccommodationDec23:          req.AccommodationDec23,
			AccommodationDec24:          req.AccommodationDec24,
			AccommodationDec25:          req.AccommodationDec25,
			Concerns:                    req.Concerns,
		},
		AttendanceProvided: req.Dec24Attendance != nil || req.Dec25Attendance != nil,
	}
}

// GuestIDsRequest is the request body for bulk guest operations.
type GuestIDsRequest struct {
	GuestIDs []string `json:"guestIds"`
}

// Validate implements Validator.
func (req GuestIDsRequest) Validate() map[string]string {
	return h.ValidateIDs("guestIds", req.GuestIDs)
}

// DeleteGuestsResponse reports how many guests a bulk delete removed.
type DeleteGuestsResponse struct {
	Deleted int `json:"deleted"`
}

type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register a guest
// @Description Public sign-up. Creates a guest in pending registration status with no tokens. Party size 0 is stored as 1; at most 10. When either day's attendance is answered, at least one must be true.
// @Tags guests
// @Accept json
// @Produce json
// @Param body body RegisterGuestRequest true "Registration"
// @Success 201 {object} helpers.APIResponse "data contains the created guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, error.fields lists failing fields"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/guests/register [post]
func (c *GuestController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterGuestRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	g, err := c.Service.Register(r.Context(), req.registration())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, g)
}

// List godoc
// @Summary List guests
// @Description All guests, newest first.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of guests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/guests [get]
func (c *GuestController) List(w http.ResponseWriter, r *http.Request) {
	guests, err := c.Service.List(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, guests)
}

// ListPending godoc
// @Summary List pending registrations
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of pending guests"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/guests/pending [get]
func (c *GuestController) ListPending(w http.ResponseWriter, r *http.Request) {
	guests, err := c.Service.ListPending(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, guests)
}

// Approve godoc
// @Summary Approve a registration
// @Description Pending → approved. Issues the invite and portal tokens and emails the invitation. Any other source status is a conflict.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Guest ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the approved guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/guests/{id}/approve [post]
func (c *GuestController) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.UUIDPathValue(w, r, "id")
	if !ok {
		return
	}
	g, err := c.Service.Approve(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, g)
}

// Reject godoc
// @Summary Reject a registration
// @Description Pending → rejected. No tokens are issued.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Guest ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the rejected guest"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/guests/{id}/reject [post]
func (c *GuestController) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.UUIDPathValue(w, r, "id")
	if !ok {
		return
	}
	g, err := c.Service.Reject(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, g)
}

// DeleteSelected godoc
// @Summary Delete selected guests
// @Description Deletes the guests with their RSVPs, messages and photos. If any id does not exist nothing is deleted.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GuestIDsRequest true "Guest ids"
// @Success 200 {object} helpers.APIResponse "data.deleted is the number of guests removed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found, message names the missing ids"
// @Router /api/guests/delete-selected [post]
func (c *GuestController) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	var req GuestIDsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	n, err := c.Service.DeleteSelected(r.Context(), req.GuestIDs)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, DeleteGuestsResponse{Deleted: n})
}

// DeleteAll godoc
// @Summary Delete every guest
// @Description Deletes all guests with their RSVPs, messages and photos.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/guests/all [delete]
func (c *GuestController) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteAll(r.Context()); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Portal godoc
// @Summary Guest portal
// @Description Contact details of the guest owning the portal token.
// @Tags guests
// @Produce json
// @Param token path string true "Guest portal token"
// @Success 200 {object} helpers.APIResponse "data contains firstName, lastName, email, phone"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/guest-portal/{token} [get]
func (c *GuestController) Portal(w http.ResponseWriter, r *http.Request) {
	token, ok := h.TokenPathValue(w, r, "token")
	if !ok {
		return
	}
	p, err := c.Service.Portal(r.Context(), token)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, p)
}

// SendInvitations godoc
// @Summary Re-send invitations
// @Description Emails the RSVP invitation to the selected approved guests. Unknown or unapproved ids are reported in failed.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GuestIDsRequest true "Guest ids"
// @Success 200 {object} helpers.APIResponse "data contains sent and failed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/invites/send [post]
func (c *GuestController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	var req GuestIDsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.SendInvitations(r.Context(), req.GuestIDs)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, res)
}
