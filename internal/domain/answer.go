package domain

import "time"

type Answer struct {
	AnswerID   string     `json:"id" dynamodbav:"answer_id"`
	QuestionID string     `json:"question_id" dynamodbav:"question_id"`
	AuthorID   string     `json:"author_id" dynamodbav:"author_id"`
	Body       string     `json:"body" dynamodbav:"body"`
	Score      int        `json:"score" dynamodbav:"score"`
	Accepted   bool       `json:"accepted" dynamodbav:"accepted"`
	Enable     int        `json:"enable" dynamodbav:"enable"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updated" dynamodbav:"updated_at"`

	Author *User `json:"author,omitempty" dynamodbav:"-"`
}

type CreateAnswerRequest struct {
	Body string `json:"body" validate:"required,min=10"`
}

type UpdateAnswerRequest struct {
	Body *string `json:"body" validate:"omitempty,min=10"`
}
