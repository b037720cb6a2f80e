package message

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devquery-api/internal/domain"
	"github.com/devquery-api/internal/pkg/id"
	"github.com/devquery-api/internal/realtime"
)

type Service interface {
	Send(ctx context.Context, senderID string, req domain.CreateMessageRequest) (*domain.Message, error)
	ListConversation(ctx context.Context, userID, partnerID string, limit int, cursor string) ([]domain.Message, string, error)
	ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error)
	MarkRead(ctx context.Context, readerID, partnerID string) (int, error)
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListConversation(ctx context.Context, conversationID string, limit int32, cursor string) ([]domain.Message, string, error)
	ListUnreadFrom(ctx context.Context, conversationID, readerID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID string) error
}

type chatStore interface {
	TouchOnSend(ctx context.Context, ownerID, partnerID, preview, senderID string, incrementUnread bool) error
	ResetUnread(ctx context.Context, ownerID, partnerID string) error
	List(ctx context.Context, userID string) ([]domain.ChatSummary, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// dispatcher pushes events to live connections. Delivery is best-effort:
// an offline target is not an error.
type dispatcher interface {
	SendToUser(userID string, evt realtime.Envelope)
}

type service struct {
	repo     messageStore
	chatRepo chatStore
	users    userStore
	dispatch dispatcher
	logger   *slog.Logger
}

func NewService(repo messageStore, chatRepo chatStore, users userStore, dispatch dispatcher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, chatRepo: chatRepo, users: users, dispatch: dispatch, logger: logger}
}

// Send persists the message first and only then pushes it, so a crash
// between the two can never produce a pushed-but-unsaved message. The
// event goes to the receiver only; the sender already has the message.
func (s *service) Send(ctx context.Context, senderID string, req domain.CreateMessageRequest) (*domain.Message, error) {
	if req.ReceiverID == senderID {
		return nil, fmt.Errorf("cannot message yourself: %w", domain.ErrBadRequest)
	}
	sender, err := s.users.Get(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("sender not found: %w", domain.ErrNotFound)
	}
	if _, err := s.users.Get(ctx, req.ReceiverID); err != nil {
		return nil, fmt.Errorf("receiver not found: %w", domain.ErrNotFound)
	}

	m := &domain.Message{
		MessageID:      id.New(),
		ConversationID: domain.ConversationID(senderID, req.ReceiverID),
		SenderID:       senderID,
		ReceiverID:     req.ReceiverID,
		Content:        req.Content,
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, m); err != nil {
		return nil, err
	}

	if err := s.chatRepo.TouchOnSend(ctx, req.ReceiverID, senderID, m.Content, senderID, true); err != nil {
		s.logger.Warn("receiver chat summary update failed", "message_id", m.MessageID, "err", err)
	}
	if err := s.chatRepo.TouchOnSend(ctx, senderID, req.ReceiverID, m.Content, senderID, false); err != nil {
		s.logger.Warn("sender chat summary update failed", "message_id", m.MessageID, "err", err)
	}

	m.Sender = sender
	s.dispatch.SendToUser(req.ReceiverID, realtime.NewMessageEvent(m))
	return m, nil
}

func (s *service) ListConversation(ctx context.Context, userID, partnerID string, limit int, cursor string) ([]domain.Message, string, error) {
	if limit < 1 {
		limit = 50
	}
	conversationID := domain.ConversationID(userID, partnerID)
	return s.repo.ListConversation(ctx, conversationID, int32(limit), cursor)
}

func (s *service) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	chats, err := s.chatRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if partner, err := s.users.Get(ctx, chats[i].PartnerID); err == nil {
			chats[i].Partner = partner
		}
	}
	return chats, nil
}

// MarkRead flags every unread message from the partner as read, resets
// the reader's unread counter and tells the partner — so their open chat
// can move the read marker without polling. Returns how many messages
// were affected.
func (s *service) MarkRead(ctx context.Context, readerID, partnerID string) (int, error) {
	conversationID := domain.ConversationID(readerID, partnerID)
	unread, err := s.repo.ListUnreadFrom(ctx, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	for _, m := range unread {
		if err := s.repo.MarkRead(ctx, m.MessageID); err != nil {
			return 0, err
		}
	}
	if err := s.chatRepo.ResetUnread(ctx, readerID, partnerID); err != nil {
		s.logger.Warn("unread counter reset failed", "reader_id", readerID, "partner_id", partnerID, "err", err)
	}
	if len(unread) > 0 {
		s.dispatch.SendToUser(partnerID, realtime.MessageReadEvent(readerID, conversationID))
	}
	return len(unread), nil
}
