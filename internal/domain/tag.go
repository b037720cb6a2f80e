package domain

import "time"

type Tag struct {
	Name          string    `json:"name" dynamodbav:"name"`
	Description   string    `json:"description" dynamodbav:"description"`
	QuestionCount int       `json:"question_count" dynamodbav:"question_count"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}
