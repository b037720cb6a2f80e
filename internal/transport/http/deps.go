package http

import (
	"log/slog"

	"github.com/devquery-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/devquery-api/internal/infrastructure/jwt"
	"github.com/devquery-api/internal/realtime"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	QuestionRepo     *dynamo.QuestionRepo
	AnswerRepo       *dynamo.AnswerRepo
	VoteRepo         *dynamo.VoteRepo
	TagRepo          *dynamo.TagRepo
	FollowRepo       *dynamo.FollowRepo
	MessageRepo      *dynamo.MessageRepo
	ChatRepo         *dynamo.ChatRepo
	NotificationRepo *dynamo.NotificationRepo
	Hub              *realtime.Hub
	JWTProvider      *jwtinfra.Provider
	Logger           *slog.Logger
}
