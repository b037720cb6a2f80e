package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/devquery-api/internal/domain"
	"github.com/devquery-api/internal/pkg/id"
)

type Service interface {
	Notify(ctx context.Context, userID, kind, message, actorID, targetID string) error
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

// Notify persists a notification for later polling. Forum events are not
// pushed over the socket; only chat traffic is.
func (s *service) Notify(ctx context.Context, userID, kind, message, actorID, targetID string) error {
	now := time.Now().UTC()
	return s.repo.Put(ctx, &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Kind:           kind,
		Message:        message,
		ActorID:        actorID,
		TargetID:       targetID,
		Readed:         0,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}
