package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devquery-api/internal/domain"
)

type Service interface {
	Cast(ctx context.Context, userID, targetID, targetKind string, value int) (newScore int, err error)
}

type voteStore interface {
	Put(ctx context.Context, v *domain.Vote) error
	Get(ctx context.Context, targetID, userID string) (*domain.Vote, error)
	Delete(ctx context.Context, targetID, userID string) error
}

type questionStore interface {
	Get(ctx context.Context, questionID string) (*domain.Question, error)
	AdjustScore(ctx context.Context, questionID string, delta int) error
}

type answerStore interface {
	Get(ctx context.Context, answerID string) (*domain.Answer, error)
	AdjustScore(ctx context.Context, answerID string, delta int) error
}

type service struct {
	repo      voteStore
	questions questionStore
	answers   answerStore
}

func NewService(repo voteStore, questions questionStore, answers answerStore) Service {
	return &service{repo: repo, questions: questions, answers: answers}
}

// Cast records a user's vote on a question or answer. A repeat vote with
// the same value is a no-op, a different value replaces it, and zero
// clears it; the target's running score absorbs the delta atomically.
func (s *service) Cast(ctx context.Context, userID, targetID, targetKind string, value int) (int, error) {
	if value < -1 || value > 1 {
		return 0, fmt.Errorf("vote value must be -1, 0 or 1: %w", domain.ErrBadRequest)
	}

	var current int
	switch targetKind {
	case domain.VoteTargetQuestion:
		q, err := s.questions.Get(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if q.AuthorID == userID {
			return 0, fmt.Errorf("voting on your own question: %w", domain.ErrForbidden)
		}
		current = q.Score
	case domain.VoteTargetAnswer:
		a, err := s.answers.Get(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if a.AuthorID == userID {
			return 0, fmt.Errorf("voting on your own answer: %w", domain.ErrForbidden)
		}
		current = a.Score
	default:
		return 0, fmt.Errorf("unknown vote target kind %q: %w", targetKind, domain.ErrBadRequest)
	}

	prev := 0
	existing, err := s.repo.Get(ctx, targetID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	if existing != nil {
		prev = existing.Value
	}
	delta := value - prev
	if delta == 0 {
		return current, nil
	}

	if value == 0 {
		if err := s.repo.Delete(ctx, targetID, userID); err != nil {
			return 0, err
		}
	} else {
		now := time.Now().UTC()
		created := now
		if existing != nil {
			created = existing.CreatedAt
		}
		v := &domain.Vote{
			TargetID:   targetID,
			UserID:     userID,
			TargetKind: targetKind,
			Value:      value,
			CreatedAt:  created,
			UpdatedAt:  now,
		}
		if err := s.repo.Put(ctx, v); err != nil {
			return 0, err
		}
	}

	if targetKind == domain.VoteTargetQuestion {
		err = s.questions.AdjustScore(ctx, targetID, delta)
	} else {
		err = s.answers.AdjustScore(ctx, targetID, delta)
	}
	if err != nil {
		return 0, err
	}
	return current + delta, nil
}
