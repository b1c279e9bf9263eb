package mingle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mingleapp/mingle/core"
	"github.com/mingleapp/mingle/pkg/router"
)

type MessageHandler struct {
	service *core.MessageService
}

func NewMessageHandler(service *core.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

type SendMessagePayload struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

type SendMessageResponse struct {
	Message    core.Message `json:"message"`
	ReceiverID int64        `json:"receiver_id"`
}

// SendMessageHandler sends a direct message from the authenticated user.
// The response carries the receiver id so the client can refresh the
// conversation view it belongs to.
func (h *MessageHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) error {
	session := core.SessionFromRequest(r)

	var payload SendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return router.NewJsonError(http.StatusBadRequest, "invalid json")
	}
	defer r.Body.Close()

	message, err := h.service.Send(r.Context(), core.MessageCreateInput{
		SenderID:   session.UserID,
		ReceiverID: payload.ReceiverID,
		Content:    payload.Content,
	})
	if err != nil {
		if errors.Is(err, core.ErrInvalidMessage) {
			return router.NewJsonError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, core.ErrSendFailed) {
			return router.NewJsonError(http.StatusInternalServerError, core.ErrSendFailed.Error())
		}
		return err
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SendMessageResponse{
		Message:    *message,
		ReceiverID: message.ReceiverID,
	})
	return nil
}

// MessageCenterHandler returns the candidate correspondents and the
// authenticated user's full message history.
func (h *MessageHandler) MessageCenterHandler(w http.ResponseWriter, r *http.Request) error {
	session := core.SessionFromRequest(r)

	view, err := h.service.MessageCenter(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrViewUnavailable) {
			return router.NewJsonError(http.StatusInternalServerError, core.ErrViewUnavailable.Error())
		}
		return err
	}

	if view.Users == nil {
		view.Users = []core.Profile{}
	}
	if view.Messages == nil {
		view.Messages = []core.Message{}
	}
	json.NewEncoder(w).Encode(view)
	return nil
}
