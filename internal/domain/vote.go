package domain

import "time"

// Vote target kinds.
const (
	VoteTargetQuestion = "question"
	VoteTargetAnswer   = "answer"
)

// Vote is keyed by (target_id, user_id); re-voting replaces the value.
// The running score lives on the target record and is adjusted by the
// delta between the old and new value.
type Vote struct {
	TargetID   string    `json:"target_id" dynamodbav:"target_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	TargetKind string    `json:"target_kind" dynamodbav:"target_kind"`
	Value      int       `json:"value" dynamodbav:"value"` // +1, -1
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type VoteRequest struct {
	Value int `json:"value" validate:"oneof=-1 0 1"` // 0 clears the vote
}
