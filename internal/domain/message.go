package domain

import (
	"strings"
	"time"
)

type Message struct {
	MessageID      string    `json:"id" dynamodbav:"message_id"`
	ConversationID string    `json:"conversation_id" dynamodbav:"conversation_id"`
	SenderID       string    `json:"sender_id" dynamodbav:"sender_id"`
	ReceiverID     string    `json:"receiver_id" dynamodbav:"receiver_id"`
	Content        string    `json:"content" dynamodbav:"content"`
	Read           bool      `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`

	// Denormalized sender, attached for push payloads and conversation
	// responses; never stored.
	Sender *User `json:"sender,omitempty" dynamodbav:"-"`
}

// ConversationID derives the canonical conversation key for a user pair.
// The two ids are sorted so both directions map to the same conversation.
func ConversationID(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "#" + b
}

// ChatSummary is one row of a user's chat list: the partner, the last
// message preview and how many messages from the partner are unread.
// Maintained on every send and reset by mark-read.
type ChatSummary struct {
	UserID      string    `json:"-" dynamodbav:"user_id"`
	PartnerID   string    `json:"partner_id" dynamodbav:"partner_id"`
	LastMessage string    `json:"last_message" dynamodbav:"last_message"`
	LastSender  string    `json:"last_sender_id" dynamodbav:"last_sender_id"`
	Unread      int       `json:"unread" dynamodbav:"unread"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`

	Partner *User `json:"partner,omitempty" dynamodbav:"-"`
}

type CreateMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
}
