package answer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devquery-api/internal/domain"
	"github.com/devquery-api/internal/pkg/id"
)

const (
	fieldBody             = "body"
	fieldAccepted         = "accepted"
	fieldAcceptedAnswerID = "accepted_answer_id"
)

type Service interface {
	Create(ctx context.Context, questionID, authorID string, req domain.CreateAnswerRequest) (*domain.Answer, error)
	ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error)
	Update(ctx context.Context, answerID, actorID, actorRole string, req domain.UpdateAnswerRequest) (*domain.Answer, error)
	Delete(ctx context.Context, answerID, actorID, actorRole string) error
	Accept(ctx context.Context, answerID, actorID string) (*domain.Answer, error)
}

type answerStore interface {
	Put(ctx context.Context, a *domain.Answer) error
	Get(ctx context.Context, answerID string) (*domain.Answer, error)
	Update(ctx context.Context, answerID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, answerID string) error
	ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error)
}

type questionStore interface {
	Get(ctx context.Context, questionID string) (*domain.Question, error)
	Update(ctx context.Context, questionID string, updates map[string]interface{}) error
	AdjustAnswerCount(ctx context.Context, questionID string, delta int) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type notifier interface {
	Notify(ctx context.Context, userID, kind, message, actorID, targetID string) error
}

type service struct {
	repo         answerStore
	questionRepo questionStore
	users        userStore
	notifier     notifier
	logger       *slog.Logger
}

func NewService(repo answerStore, questionRepo questionStore, users userStore, n notifier, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, questionRepo: questionRepo, users: users, notifier: n, logger: logger}
}

func (s *service) Create(ctx context.Context, questionID, authorID string, req domain.CreateAnswerRequest) (*domain.Answer, error) {
	q, err := s.questionRepo.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.Get(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("author not found: %w", domain.ErrNotFound)
	}
	now := time.Now().UTC()
	a := &domain.Answer{
		AnswerID:   id.New(),
		QuestionID: questionID,
		AuthorID:   authorID,
		Body:       req.Body,
		Enable:     1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	if err := s.questionRepo.AdjustAnswerCount(ctx, questionID, 1); err != nil {
		s.logger.Warn("answer counter increment failed", "question_id", questionID, "err", err)
	}
	if q.AuthorID != authorID {
		msg := author.Username + " answered your question \"" + q.Title + "\""
		if err := s.notifier.Notify(ctx, q.AuthorID, domain.NotificationNewAnswer, msg, authorID, questionID); err != nil {
			s.logger.Warn("new answer notification failed", "question_id", questionID, "err", err)
		}
	}
	a.Author = author
	return a, nil
}

func (s *service) ListByQuestion(ctx context.Context, questionID string) ([]domain.Answer, error) {
	answers, err := s.repo.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	cache := map[string]*domain.User{}
	for i := range answers {
		aid := answers[i].AuthorID
		if u, ok := cache[aid]; ok {
			answers[i].Author = u
			continue
		}
		u, err := s.users.Get(ctx, aid)
		if err != nil {
			continue
		}
		cache[aid] = u
		answers[i].Author = u
	}
	return answers, nil
}

func (s *service) Update(ctx context.Context, answerID, actorID, actorRole string, req domain.UpdateAnswerRequest) (*domain.Answer, error) {
	a, err := s.repo.Get(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != actorID && actorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("only the author can edit an answer: %w", domain.ErrForbidden)
	}
	if req.Body == nil {
		return a, nil
	}
	if err := s.repo.Update(ctx, answerID, map[string]interface{}{fieldBody: *req.Body}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, answerID)
}

func (s *service) Delete(ctx context.Context, answerID, actorID, actorRole string) error {
	a, err := s.repo.Get(ctx, answerID)
	if err != nil {
		return err
	}
	if a.AuthorID != actorID && actorRole != domain.RoleAdmin {
		return fmt.Errorf("only the author can delete an answer: %w", domain.ErrForbidden)
	}
	if err := s.repo.SoftDelete(ctx, answerID); err != nil {
		return err
	}
	if err := s.questionRepo.AdjustAnswerCount(ctx, a.QuestionID, -1); err != nil {
		s.logger.Warn("answer counter decrement failed", "question_id", a.QuestionID, "err", err)
	}
	if a.Accepted {
		if err := s.questionRepo.Update(ctx, a.QuestionID, map[string]interface{}{fieldAcceptedAnswerID: ""}); err != nil {
			s.logger.Warn("clearing accepted answer failed", "question_id", a.QuestionID, "err", err)
		}
	}
	return nil
}

// Accept marks an answer as the question's accepted one. Only the
// question's author may accept, and accepting a new answer un-accepts
// the previous one.
func (s *service) Accept(ctx context.Context, answerID, actorID string) (*domain.Answer, error) {
	a, err := s.repo.Get(ctx, answerID)
	if err != nil {
		return nil, err
	}
	q, err := s.questionRepo.Get(ctx, a.QuestionID)
	if err != nil {
		return nil, err
	}
	if q.AuthorID != actorID {
		return nil, fmt.Errorf("only the question author can accept an answer: %w", domain.ErrForbidden)
	}
	if q.AcceptedAnswerID == answerID {
		a.Accepted = true
		return a, nil
	}
	if q.AcceptedAnswerID != "" {
		if err := s.repo.Update(ctx, q.AcceptedAnswerID, map[string]interface{}{fieldAccepted: false}); err != nil {
			s.logger.Warn("un-accepting previous answer failed", "answer_id", q.AcceptedAnswerID, "err", err)
		}
	}
	if err := s.repo.Update(ctx, answerID, map[string]interface{}{fieldAccepted: true}); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Update(ctx, q.QuestionID, map[string]interface{}{fieldAcceptedAnswerID: answerID}); err != nil {
		return nil, err
	}
	if a.AuthorID != actorID {
		msg := "Your answer on \"" + q.Title + "\" was accepted"
		if err := s.notifier.Notify(ctx, a.AuthorID, domain.NotificationAnswerAccepted, msg, actorID, a.QuestionID); err != nil {
			s.logger.Warn("answer accepted notification failed", "answer_id", answerID, "err", err)
		}
	}
	a.Accepted = true
	return a, nil
}
