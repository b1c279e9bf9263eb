package core

import (
	"context"
	"errors"
	"time"
)

// MessageTimestampLayout is the storage format of message timestamps.
const MessageTimestampLayout = "2006-01-02 15:04:05"

// messageZone is the fixed civil zone that message timestamps are recorded
// in, independent of the host's local zone.
var messageZone = time.FixedZone("IST", 5*60*60+30*60)

// FormatMessageTime converts t to the fixed civil zone and formats it at
// second resolution.
func FormatMessageTime(t time.Time) string {
	return t.In(messageZone).Format(MessageTimestampLayout)
}

// Message represents a direct message between two users. Messages are
// immutable once created; there are no update or delete operations.
type Message struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	// Sender is the sender's username, joined on retrieval.
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// MessageCreateInput represents the input for sending a message.
// Content may be empty.
type MessageCreateInput struct {
	SenderID   int64  `json:"sender_id" validate:"required"`
	ReceiverID int64  `json:"receiver_id" validate:"required"`
	Content    string `json:"content"`
}

// Validate validates the message input.
func (m *MessageCreateInput) Validate() error {
	return validate.Struct(m)
}

var (
	// ErrInvalidMessage is returned when a message input is invalid.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrSendFailed is returned when the insert or the sender lookup fails
	// during a send. When the lookup is what failed, the message has already
	// been stored.
	ErrSendFailed = errors.New("send failed")
	// ErrViewUnavailable is returned when either query behind the message
	// center view fails.
	ErrViewUnavailable = errors.New("message center unavailable")
)

type MessageStore interface {
	// Insert appends a new message row and returns the assigned id.
	// Ids are assigned by the store and are monotonically increasing.
	// No referential check is performed on senderID or receiverID.
	Insert(ctx context.Context, senderID, receiverID int64, content, timestamp string) (int64, error)

	// ListForUser returns every message where userID is the sender or the
	// receiver, each joined with the sender's username, ordered newest
	// first. A nil slice is returned when there are none.
	ListForUser(ctx context.Context, userID int64) ([]Message, error)
}
