package domain

import "time"

type Question struct {
	QuestionID       string     `json:"id" dynamodbav:"question_id"`
	AuthorID         string     `json:"author_id" dynamodbav:"author_id"`
	Title            string     `json:"title" dynamodbav:"title"`
	Body             string     `json:"body" dynamodbav:"body"`
	Tags             []string   `json:"tags" dynamodbav:"tags"`
	Score            int        `json:"score" dynamodbav:"score"`
	AnswerCount      int        `json:"answer_count" dynamodbav:"answer_count"`
	AcceptedAnswerID string     `json:"accepted_answer_id,omitempty" dynamodbav:"accepted_answer_id"`
	Enable           int        `json:"enable" dynamodbav:"enable"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt        time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updated" dynamodbav:"updated_at"`

	// Denormalized for list/detail responses; never stored.
	Author *User `json:"author,omitempty" dynamodbav:"-"`
}

type CreateQuestionRequest struct {
	Title string   `json:"title" validate:"required,min=10,max=200"`
	Body  string   `json:"body" validate:"required,min=20"`
	Tags  []string `json:"tags" validate:"max=5,dive,min=1,max=32"`
}

type UpdateQuestionRequest struct {
	Title *string   `json:"title" validate:"omitempty,min=10,max=200"`
	Body  *string   `json:"body" validate:"omitempty,min=20"`
	Tags  *[]string `json:"tags" validate:"omitempty,max=5,dive,min=1,max=32"`
}
