package http

import (
	"net/http"

	"github.com/devquery-api/internal/application/answer"
	"github.com/devquery-api/internal/application/follow"
	"github.com/devquery-api/internal/application/message"
	"github.com/devquery-api/internal/application/notification"
	"github.com/devquery-api/internal/application/question"
	"github.com/devquery-api/internal/application/session"
	"github.com/devquery-api/internal/application/tag"
	"github.com/devquery-api/internal/application/user"
	"github.com/devquery-api/internal/application/vote"
	"github.com/devquery-api/internal/config"
	"github.com/devquery-api/internal/domain"
	"github.com/devquery-api/internal/transport/http/handler"
	appmiddleware "github.com/devquery-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	// Direct messages get their own limiter so a chat flood cannot starve
	// the rest of the API.
	messageRL := appmiddleware.NewRateLimiter(rate.Limit(2), 5)

	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.JWTProvider, cfg.RefreshTokenDur)
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	notifSvc := notification.NewService(deps.NotificationRepo)
	questionSvc := question.NewService(deps.QuestionRepo, deps.TagRepo, deps.UserRepo, deps.Logger)
	answerSvc := answer.NewService(deps.AnswerRepo, deps.QuestionRepo, deps.UserRepo, notifSvc, deps.Logger)
	voteSvc := vote.NewService(deps.VoteRepo, deps.QuestionRepo, deps.AnswerRepo)
	tagSvc := tag.NewService(deps.TagRepo)
	followSvc := follow.NewService(deps.FollowRepo, deps.UserRepo, notifSvc, deps.Logger)
	messageSvc := message.NewService(deps.MessageRepo, deps.ChatRepo, deps.UserRepo, deps.Hub, deps.Logger)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc, deps.Hub)
	questionH := handler.NewQuestionHandler(questionSvc)
	answerH := handler.NewAnswerHandler(answerSvc)
	voteH := handler.NewVoteHandler(voteSvc)
	tagH := handler.NewTagHandler(tagSvc)
	followH := handler.NewFollowHandler(followSvc)
	messageH := handler.NewMessageHandler(messageSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	// The socket authenticates itself via the register event, so the
	// upgrade endpoint stays public.
	r.Get("/ws", deps.Hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/online", userH.ListOnline)
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/{id}/follow", followH.Follow)
			r.Delete("/users/{id}/follow", followH.Unfollow)
			r.Get("/users/{id}/following", followH.ListFollowing)
			r.Get("/users/{id}/followers", followH.ListFollowers)

			r.Get("/questions", questionH.List)
			r.Post("/questions", questionH.Create)
			r.Get("/questions/{id}", questionH.Get)
			r.Put("/questions/{id}", questionH.Update)
			r.Delete("/questions/{id}", questionH.Delete)
			r.Get("/questions/{id}/answers", answerH.ListByQuestion)
			r.Post("/questions/{id}/answers", answerH.Create)
			r.Post("/questions/{id}/vote", voteH.CastQuestion)

			r.Put("/answers/{id}", answerH.Update)
			r.Delete("/answers/{id}", answerH.Delete)
			r.Post("/answers/{id}/accept", answerH.Accept)
			r.Post("/answers/{id}/vote", voteH.CastAnswer)

			r.Get("/tags", tagH.List)
			r.Get("/tags/{name}", tagH.Get)

			r.With(messageRL.Limit).Post("/messages", messageH.Send)
			r.Get("/messages/chats", messageH.ListChats)
			r.Get("/messages/{userID}", messageH.ListConversation)
			r.Post("/messages/{userID}/read", messageH.MarkRead)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Put("/tags/{name}", tagH.Describe)
			})
		})
	})

	return r
}
