package controllers

import (
	"log/slog"
	"net/http"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

// SendMessageRequest is the request body for POST /api/messages.
type SendMessageRequest struct {
	GuestToken string `json:"guestToken"`
	GuestName  string `json:"guestName"`
	Message    string `json:"message"`
}

// ListMessagesResponse is the data of GET /api/messages.
type ListMessagesResponse struct {
	Messages    []*domain.Message `json:"messages"`
	UnreadCount int               `json:"unreadCount"`
}

type MessageController struct {
	Logger  *slog.Logger
	Service domain.MessageService
}

func NewMessageController(logger *slog.Logger, svc domain.MessageService) *MessageController {
	return &MessageController{Logger: logger, Service: svc}
}

// Send godoc
// @Summary Leave a message for the couple
// @Tags messages
// @Accept json
// @Produce json
// @Param body body SendMessageRequest true "Message"
// @Success 201 {object} helpers.APIResponse "data contains the stored message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/messages [post]
func (c *MessageController) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	m, err := c.Service.Send(r.Context(), req.GuestToken, req.GuestName, req.Message)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, m)
}

// List godoc
// @Summary List messages
// @Description Newest first, with the number of unread messages.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains messages and unreadCount"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/messages [get]
func (c *MessageController) List(w http.ResponseWriter, r *http.Request) {
	msgs, unread, err := c.Service.List(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListMessagesResponse{Messages: msgs, UnreadCount: unread})
}

// MarkRead godoc
// @Summary Mark a message as read
// @Tags messages
// @Security BearerAuth
// @Param id path string true "Message ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/messages/{id}/read [patch]
func (c *MessageController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.UUIDPathValue(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.MarkRead(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
