package tag

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/devquery-api/internal/domain"
)

type Service interface {
	List(ctx context.Context) ([]domain.Tag, error)
	Get(ctx context.Context, name string) (*domain.Tag, error)
	Describe(ctx context.Context, name, description string) (*domain.Tag, error)
}

type tagStore interface {
	Put(ctx context.Context, t *domain.Tag) error
	Get(ctx context.Context, name string) (*domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
}

type service struct {
	repo tagStore
}

func NewService(repo tagStore) Service {
	return &service{repo: repo}
}

// List returns all tags, most used first.
func (s *service) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].QuestionCount != tags[j].QuestionCount {
			return tags[i].QuestionCount > tags[j].QuestionCount
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

func (s *service) Get(ctx context.Context, name string) (*domain.Tag, error) {
	return s.repo.Get(ctx, strings.ToLower(strings.TrimSpace(name)))
}

// Describe sets or updates a tag's description, creating the tag row if
// the counter upsert hasn't yet.
func (s *service) Describe(ctx context.Context, name, description string) (*domain.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	now := time.Now().UTC()
	t, err := s.repo.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		t = &domain.Tag{Name: name, CreatedAt: now}
	}
	t.Description = description
	t.UpdatedAt = now
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
