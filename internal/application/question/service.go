package question

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devquery-api/internal/domain"
	"github.com/devquery-api/internal/pkg/id"
)

const (
	fieldTitle = "title"
	fieldBody  = "body"
	fieldTags  = "tags"
)

type Service interface {
	Create(ctx context.Context, authorID string, req domain.CreateQuestionRequest) (*domain.Question, error)
	List(ctx context.Context, limit int, cursor, tag string) ([]domain.Question, string, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Question, error)
	Get(ctx context.Context, questionID string) (*domain.Question, error)
	Update(ctx context.Context, questionID, actorID, actorRole string, req domain.UpdateQuestionRequest) (*domain.Question, error)
	Delete(ctx context.Context, questionID, actorID, actorRole string) error
}

type questionStore interface {
	Put(ctx context.Context, q *domain.Question) error
	Get(ctx context.Context, questionID string) (*domain.Question, error)
	Update(ctx context.Context, questionID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, questionID string) error
	ScanPage(ctx context.Context, limit int32, cursor, tag string) ([]domain.Question, string, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Question, error)
}

type tagStore interface {
	AdjustQuestionCount(ctx context.Context, name string, delta int) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo    questionStore
	tagRepo tagStore
	users   userStore
	logger  *slog.Logger
}

func NewService(repo questionStore, tagRepo tagStore, users userStore, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, tagRepo: tagRepo, users: users, logger: logger}
}

func (s *service) Create(ctx context.Context, authorID string, req domain.CreateQuestionRequest) (*domain.Question, error) {
	author, err := s.users.Get(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("author not found: %w", domain.ErrNotFound)
	}
	tags := normalizeTags(req.Tags)
	now := time.Now().UTC()
	q := &domain.Question{
		QuestionID: id.New(),
		AuthorID:   authorID,
		Title:      strings.TrimSpace(req.Title),
		Body:       req.Body,
		Tags:       tags,
		Enable:     1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, q); err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if err := s.tagRepo.AdjustQuestionCount(ctx, tag, 1); err != nil {
			s.logger.Warn("tag counter increment failed", "tag", tag, "question_id", q.QuestionID, "err", err)
		}
	}
	q.Author = author
	return q, nil
}

func (s *service) List(ctx context.Context, limit int, cursor, tag string) ([]domain.Question, string, error) {
	if limit < 1 {
		limit = 20
	}
	questions, next, err := s.repo.ScanPage(ctx, int32(limit), cursor, strings.ToLower(strings.TrimSpace(tag)))
	if err != nil {
		return nil, "", err
	}
	s.attachAuthors(ctx, questions)
	return questions, next, nil
}

func (s *service) ListByAuthor(ctx context.Context, authorID string) ([]domain.Question, error) {
	questions, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	s.attachAuthors(ctx, questions)
	return questions, nil
}

func (s *service) Get(ctx context.Context, questionID string) (*domain.Question, error) {
	q, err := s.repo.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if author, err := s.users.Get(ctx, q.AuthorID); err == nil {
		q.Author = author
	}
	return q, nil
}

func (s *service) Update(ctx context.Context, questionID, actorID, actorRole string, req domain.UpdateQuestionRequest) (*domain.Question, error) {
	q, err := s.repo.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.AuthorID != actorID && actorRole != domain.RoleAdmin {
		return nil, fmt.Errorf("only the author can edit a question: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		updates[fieldBody] = *req.Body
	}
	if req.Tags != nil {
		newTags := normalizeTags(*req.Tags)
		updates[fieldTags] = newTags
		s.retag(ctx, questionID, q.Tags, newTags)
	}
	if len(updates) == 0 {
		return s.Get(ctx, questionID)
	}
	if err := s.repo.Update(ctx, questionID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, questionID)
}

func (s *service) Delete(ctx context.Context, questionID, actorID, actorRole string) error {
	q, err := s.repo.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if q.AuthorID != actorID && actorRole != domain.RoleAdmin {
		return fmt.Errorf("only the author can delete a question: %w", domain.ErrForbidden)
	}
	if err := s.repo.SoftDelete(ctx, questionID); err != nil {
		return err
	}
	for _, tag := range q.Tags {
		if err := s.tagRepo.AdjustQuestionCount(ctx, tag, -1); err != nil {
			s.logger.Warn("tag counter decrement failed", "tag", tag, "question_id", questionID, "err", err)
		}
	}
	return nil
}

func (s *service) attachAuthors(ctx context.Context, questions []domain.Question) {
	cache := map[string]*domain.User{}
	for i := range questions {
		aid := questions[i].AuthorID
		if u, ok := cache[aid]; ok {
			questions[i].Author = u
			continue
		}
		u, err := s.users.Get(ctx, aid)
		if err != nil {
			continue
		}
		cache[aid] = u
		questions[i].Author = u
	}
}

// retag adjusts tag counters for the delta between old and new tag sets.
func (s *service) retag(ctx context.Context, questionID string, oldTags, newTags []string) {
	old := map[string]bool{}
	for _, t := range oldTags {
		old[t] = true
	}
	cur := map[string]bool{}
	for _, t := range newTags {
		cur[t] = true
		if !old[t] {
			if err := s.tagRepo.AdjustQuestionCount(ctx, t, 1); err != nil {
				s.logger.Warn("tag counter increment failed", "tag", t, "question_id", questionID, "err", err)
			}
		}
	}
	for _, t := range oldTags {
		if !cur[t] {
			if err := s.tagRepo.AdjustQuestionCount(ctx, t, -1); err != nil {
				s.logger.Warn("tag counter decrement failed", "tag", t, "question_id", questionID, "err", err)
			}
		}
	}
}

// normalizeTags lowercases, trims and dedupes while keeping order.
func normalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
