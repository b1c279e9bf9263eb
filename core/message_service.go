package core

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// NewMessageEvent is emitted to the receiver's channel after a message has
// been stored.
const NewMessageEvent = "new_message"

// NewMessagePayload is the wire payload of a NewMessageEvent.
type NewMessagePayload struct {
	Sender     string `json:"sender"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	ReceiverID int64  `json:"receiver_id"`
}

// Notifier emits an event to every live connection in a channel. Delivery
// is best effort: a channel with no members is a no-op and delivery is
// never confirmed.
type Notifier interface {
	EmitTo(channel, eventType string, payload interface{}) error
}

// MessageCenterView combines the candidate correspondents with the user's
// entire message history. Filtering the history down to a single thread is
// left to the presentation layer.
type MessageCenterView struct {
	Users    []Profile `json:"users"`
	Messages []Message `json:"messages"`
}

// MessageService orchestrates store-then-notify for sends and assembles the
// message center view.
type MessageService struct {
	messages MessageStore
	users    UserStore
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewMessageService(messages MessageStore, users UserStore, notifier Notifier, logger *slog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Send stores the message, resolves the sender's username and publishes a
// NewMessageEvent to the receiver's channel. The publish step is fire and
// forget: its failure or the absence of a listener never fails the send.
// A failed sender lookup fails the send even though the message is already
// stored at that point.
func (s *MessageService) Send(ctx context.Context, input MessageCreateInput) (*Message, error) {
	if err := input.Validate(); err != nil {
		return nil, ErrInvalidMessage
	}

	timestamp := FormatMessageTime(s.now())

	id, err := s.messages.Insert(ctx, input.SenderID, input.ReceiverID, input.Content, timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: Insert: %s", ErrSendFailed, err)
	}

	sender, err := s.users.GetUserByID(ctx, input.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: GetUserByID: %s", ErrSendFailed, err)
	}
	if sender == nil {
		return nil, fmt.Errorf("%w: sender %d not found", ErrSendFailed, input.SenderID)
	}

	s.publish(NewMessagePayload{
		Sender:     sender.Username,
		Content:    input.Content,
		Timestamp:  timestamp,
		ReceiverID: input.ReceiverID,
	})

	return &Message{
		ID:         id,
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Sender:     sender.Username,
		Content:    input.Content,
		Timestamp:  timestamp,
	}, nil
}

func (s *MessageService) publish(payload NewMessagePayload) {
	channel := strconv.FormatInt(payload.ReceiverID, 10)
	if err := s.notifier.EmitTo(channel, NewMessageEvent, payload); err != nil {
		s.logger.Error(fmt.Sprintf("emit %s to %s: %v", NewMessageEvent, channel, err))
	}
}

// MessageCenter assembles the message center view for the user: every other
// user plus the user's full message history across all correspondents.
func (s *MessageService) MessageCenter(ctx context.Context, userID int64) (*MessageCenterView, error) {
	users, err := s.users.ListUsersExcept(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: ListUsersExcept: %s", ErrViewUnavailable, err)
	}

	messages, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForUser: %s", ErrViewUnavailable, err)
	}

	return &MessageCenterView{
		Users:    users,
		Messages: messages,
	}, nil
}
