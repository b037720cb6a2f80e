package realtime

import "time"

// Envelope types shared by both directions of the socket. One JSON
// object with a "type" discriminator; unused fields are omitted.
const (
	TypeRegister    = "register"     // C→S: bind connection to a user id
	TypeConnection  = "connection"   // S→C: handshake ack (pre-registration)
	TypeRegistered  = "registered"   // S→C: registration ack
	TypeOnlineUsers = "online_users" // S→C: full online roster
	TypeNewMessage  = "new_message"  // S→C: push a new chat message
	TypeMessageRead = "message_read" // S→C: conversation read receipt
	TypePing        = "ping"         // both: liveness probe
	TypePong        = "pong"         // both: liveness reply
	TypeError       = "error"        // S→C: non-fatal protocol error
)

// Envelope is the wire format for every socket event. Message carries a
// string for acks and errors and a message object for new_message — the
// same shape the web client has always consumed.
type Envelope struct {
	Type           string      `json:"type"`
	UserID         string      `json:"userId,omitempty"`
	UserIDs        []string    `json:"userIds,omitempty"`
	Message        interface{} `json:"message,omitempty"`
	ConversationID string      `json:"conversationId,omitempty"`
	Timestamp      int64       `json:"timestamp,omitempty"`
}

// inbound is the subset of the envelope clients are allowed to send.
type inbound struct {
	Type      string `json:"type"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// NewMessageEvent builds the push sent to a message's receiver. The
// message must carry its denormalized sender so clients can render the
// chat entry without a follow-up fetch.
func NewMessageEvent(msg interface{}) Envelope {
	return Envelope{Type: TypeNewMessage, Message: msg}
}

// MessageReadEvent notifies the original sender that the receiver
// opened the conversation.
func MessageReadEvent(readerID, conversationID string) Envelope {
	return Envelope{Type: TypeMessageRead, UserID: readerID, ConversationID: conversationID}
}

func errorEvent(msg string) Envelope {
	return Envelope{Type: TypeError, Message: msg}
}

func pingEvent() Envelope {
	return Envelope{Type: TypePing, Timestamp: time.Now().UnixMilli()}
}

func pongEvent(ts int64) Envelope {
	return Envelope{Type: TypePong, Timestamp: ts}
}
