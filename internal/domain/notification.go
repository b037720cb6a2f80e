package domain

import "time"

// Notification kinds.
const (
	NotificationNewAnswer      = "new_answer"
	NotificationAnswerAccepted = "answer_accepted"
	NotificationNewFollower    = "new_follower"
)

// Notification is a persisted, poll-only record. Live push covers chat
// only; everything else is picked up on the next unread fetch.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Kind           string    `json:"kind" dynamodbav:"kind"`
	Message        string    `json:"message" dynamodbav:"message"`
	ActorID        string    `json:"actor_id" dynamodbav:"actor_id"`
	TargetID       string    `json:"target_id,omitempty" dynamodbav:"target_id"`
	Readed         int       `json:"readed" dynamodbav:"readed"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
