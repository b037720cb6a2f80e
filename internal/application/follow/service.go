package follow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devquery-api/internal/domain"
)

type Service interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	ListFollowing(ctx context.Context, userID string) ([]domain.User, error)
	ListFollowers(ctx context.Context, userID string) ([]domain.User, error)
}

type followStore interface {
	Put(ctx context.Context, f *domain.Follow) error
	Get(ctx context.Context, followerID, followeeID string) (*domain.Follow, error)
	Delete(ctx context.Context, followerID, followeeID string) error
	ListFollowing(ctx context.Context, followerID string) ([]domain.Follow, error)
	ListFollowers(ctx context.Context, followeeID string) ([]domain.Follow, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type notifier interface {
	Notify(ctx context.Context, userID, kind, message, actorID, targetID string) error
}

type service struct {
	repo     followStore
	users    userStore
	notifier notifier
	logger   *slog.Logger
}

func NewService(repo followStore, users userStore, n notifier, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, users: users, notifier: n, logger: logger}
}

func (s *service) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return fmt.Errorf("cannot follow yourself: %w", domain.ErrBadRequest)
	}
	follower, err := s.users.Get(ctx, followerID)
	if err != nil {
		return fmt.Errorf("follower not found: %w", domain.ErrNotFound)
	}
	if _, err := s.users.Get(ctx, followeeID); err != nil {
		return fmt.Errorf("user to follow not found: %w", domain.ErrNotFound)
	}
	// Idempotent: a second follow is a no-op and does not re-notify.
	if _, err := s.repo.Get(ctx, followerID, followeeID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	f := &domain.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, f); err != nil {
		return err
	}
	msg := follower.Username + " started following you"
	if err := s.notifier.Notify(ctx, followeeID, domain.NotificationNewFollower, msg, followerID, ""); err != nil {
		s.logger.Warn("new follower notification failed", "followee_id", followeeID, "err", err)
	}
	return nil
}

func (s *service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return s.repo.Delete(ctx, followerID, followeeID)
}

func (s *service) ListFollowing(ctx context.Context, userID string) ([]domain.User, error) {
	follows, err := s.repo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(follows))
	for _, f := range follows {
		u, err := s.users.Get(ctx, f.FolloweeID)
		if err != nil {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

func (s *service) ListFollowers(ctx context.Context, userID string) ([]domain.User, error) {
	follows, err := s.repo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(follows))
	for _, f := range follows {
		u, err := s.users.Get(ctx, f.FollowerID)
		if err != nil {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}
